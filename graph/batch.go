package graph

// OwnerURL is the reserved Person primary key identifying the account
// owner's node. The export never states the owner's own profile URL, so a
// well-known constant stands in for it.
const OwnerURL = "https://www.linkedin.com/in/__ACCOUNT_OWNER__"

// Owner holds the account owner's profile fields. All fields may be empty
// when no Profile.csv was supplied; materialization still proceeds and
// produces a degenerate owner node.
type Owner struct {
	FirstName   string
	LastName    string
	Headline    string
	GeoLocation string
	Industry    string
	Summary     string
}

// Connection is one first-degree contact together with its connection fact.
// URL is the identity key; records without a URL, or without either name,
// are never staged.
type Connection struct {
	FirstName   string
	LastName    string
	URL         string
	Email       string
	Company     string
	Position    string
	ConnectedOn Date
}

// Endorsement is one received skill endorsement. Endorser is stored as the
// export ships it, without a URL scheme; reconciliation against the contact
// set happens at commit time.
type Endorsement struct {
	Skill      string
	Endorser   string
	EndorsedOn Timestamp
}

// Position is one of the owner's own positions. Not deduplicated.
type Position struct {
	Company  string
	Position string
}

// CompanyFollow records when the owner started following a company.
// Not deduplicated.
type CompanyFollow struct {
	Company string
	Since   Timestamp
}

// Message is one message fact. From and To are profile URLs; direction is
// resolved at commit time by membership in the contact set.
type Message struct {
	ConversationID string
	From           string
	To             string
	Subject        string
	Content        string
	ReceivedOn     Timestamp
}

// stringSet is an insertion-ordered set of non-empty strings. Re-adding an
// existing value is a no-op, so materialization order is stable and follows
// first insertion.
type stringSet struct {
	seen  map[string]struct{}
	order []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]struct{})}
}

func (s *stringSet) Add(value string) {
	if value == "" {
		return
	}
	if _, ok := s.seen[value]; ok {
		return
	}
	s.seen[value] = struct{}{}
	s.order = append(s.order, value)
}

func (s *stringSet) Has(value string) bool {
	_, ok := s.seen[value]
	return ok
}

func (s *stringSet) Len() int { return len(s.order) }

// Values returns the members in insertion order. The returned slice is the
// set's backing storage; callers must not mutate it.
func (s *stringSet) Values() []string { return s.order }

// Batch is the in-memory staging area for one import: every processed file
// accumulates into it, and Commit consumes it exactly once. Identity-bearing
// entities (companies, skills, contacts) use set semantics; relationship
// facts use list semantics. A Batch is not safe for concurrent use.
type Batch struct {
	Owner Owner

	companies *stringSet
	skills    *stringSet

	connections    []Connection
	contactByURL   map[string]struct{}
	endorsements   []Endorsement
	endorsementKey map[endorsementKey]struct{}
	positions      []Position
	companyFollows []CompanyFollow
	messages       []Message
}

type endorsementKey struct {
	endorser string
	skill    string
}

// NewBatch returns an empty staging batch.
func NewBatch() *Batch {
	b := &Batch{}
	b.Reset()
	return b
}

// Reset clears all staged state. Call at the start of each import so no
// entity or fact leaks across batches.
func (b *Batch) Reset() {
	b.Owner = Owner{}
	b.companies = newStringSet()
	b.skills = newStringSet()
	b.connections = nil
	b.contactByURL = make(map[string]struct{})
	b.endorsements = nil
	b.endorsementKey = make(map[endorsementKey]struct{})
	b.positions = nil
	b.companyFollows = nil
	b.messages = nil
}

// AddCompany inserts a company into the identity set. Idempotent.
func (b *Batch) AddCompany(name string) { b.companies.Add(name) }

// AddSkill inserts a skill into the identity set. Idempotent.
func (b *Batch) AddSkill(name string) { b.skills.Add(name) }

// AddConnection stages a contact and its connection fact, keyed by URL.
// The first occurrence of a URL wins; later duplicates are dropped so the
// Person primary key can never collide at commit time.
func (b *Batch) AddConnection(c Connection) {
	if c.URL == "" {
		return
	}
	if _, ok := b.contactByURL[c.URL]; ok {
		return
	}
	b.contactByURL[c.URL] = struct{}{}
	b.connections = append(b.connections, c)
}

// AddEndorsement stages an endorsement fact, deduplicated on
// (endorser, skill).
func (b *Batch) AddEndorsement(e Endorsement) {
	key := endorsementKey{endorser: e.Endorser, skill: e.Skill}
	if _, ok := b.endorsementKey[key]; ok {
		return
	}
	b.endorsementKey[key] = struct{}{}
	b.endorsements = append(b.endorsements, e)
}

// AddPosition stages an owner position fact. List semantics: duplicates are
// kept.
func (b *Batch) AddPosition(p Position) { b.positions = append(b.positions, p) }

// AddCompanyFollow stages a follow fact. List semantics: duplicates are kept.
func (b *Batch) AddCompanyFollow(f CompanyFollow) {
	b.companyFollows = append(b.companyFollows, f)
}

// AddMessage stages a message fact. Append-only.
func (b *Batch) AddMessage(m Message) { b.messages = append(b.messages, m) }

// Companies returns the company identity set in insertion order.
func (b *Batch) Companies() []string { return b.companies.Values() }

// Skills returns the skill identity set in insertion order.
func (b *Batch) Skills() []string { return b.skills.Values() }

// Connections returns the staged connection facts in file order.
func (b *Batch) Connections() []Connection { return b.connections }

// Endorsements returns the staged endorsement facts.
func (b *Batch) Endorsements() []Endorsement { return b.endorsements }

// Positions returns the staged owner position facts.
func (b *Batch) Positions() []Position { return b.positions }

// CompanyFollows returns the staged follow facts.
func (b *Batch) CompanyFollows() []CompanyFollow { return b.companyFollows }

// Messages returns the staged message facts.
func (b *Batch) Messages() []Message { return b.messages }

// HasCompany reports whether the company identity set contains name.
func (b *Batch) HasCompany(name string) bool { return b.companies.Has(name) }

// HasContact reports whether a contact with this URL has been staged.
func (b *Batch) HasContact(url string) bool {
	_, ok := b.contactByURL[url]
	return ok
}
