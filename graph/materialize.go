package graph

import (
	"context"
	"fmt"
)

// endorserScheme is prepended to endorser URLs before reconciliation: the
// export omits the scheme for this one field.
const endorserScheme = "https://"

// schemaStatements declares the graph's node and relationship tables, in
// dependency order. The engine's schema introspection must report exactly
// these definitions back.
var schemaStatements = []string{
	"CREATE NODE TABLE Company (name STRING, PRIMARY KEY(name))",
	"CREATE NODE TABLE Person (firstName STRING, lastName STRING, url STRING, email STRING, PRIMARY KEY(url))",
	"CREATE NODE TABLE Skill (name STRING, PRIMARY KEY(name))",
	"CREATE REL TABLE Connects (FROM Person TO Person, connectedOn DATE)",
	"CREATE REL TABLE HasSkill (FROM Person TO Skill)",
	"CREATE REL TABLE WorksAt (FROM Person TO Company, position STRING)",
	"CREATE REL TABLE Endorses (FROM Person TO Skill, endorsedOn TIMESTAMP)",
	"CREATE REL TABLE GetNotification (FROM Person TO Company, since TIMESTAMP)",
	"CREATE REL TABLE Messages (FROM Person TO Person, subject STRING, content STRING, receivedOn TIMESTAMP)",
}

const (
	insertPersonStmt  = "CREATE (p:Person {firstName: $firstName, lastName: $lastName, url: $url, email: $email})"
	insertCompanyStmt = "CREATE (c:Company {name: $name})"
	insertSkillStmt   = "CREATE (s:Skill {name: $name})"

	insertConnectsStmt = "MATCH (a:Person), (b:Person) WHERE a.url = $fromUrl AND b.url = $toUrl " +
		"CREATE (a)-[r:Connects {connectedOn: $connectedOn}]->(b)"
	insertHasSkillStmt = "MATCH (p:Person), (s:Skill) WHERE p.url = $url AND s.name = $name " +
		"CREATE (p)-[r:HasSkill]->(s)"
	insertWorksAtStmt = "MATCH (p:Person), (c:Company) WHERE p.url = $url AND c.name = $company " +
		"CREATE (p)-[r:WorksAt {position: $position}]->(c)"
	insertEndorsesStmt = "MATCH (p:Person), (s:Skill) WHERE p.url = $url AND s.name = $skill " +
		"CREATE (p)-[r:Endorses {endorsedOn: $endorsedOn}]->(s)"
	insertFollowStmt = "MATCH (p:Person), (c:Company) WHERE p.url = $url AND c.name = $company " +
		"CREATE (p)-[r:GetNotification {since: $since}]->(c)"
	insertMessageStmt = "MATCH (a:Person), (b:Person) WHERE a.url = $fromUrl AND b.url = $toUrl " +
		"CREATE (a)-[r:Messages {subject: $subject, content: $content, receivedOn: $receivedOn}]->(b)"
)

// Commit materializes the staged batch into the graph, in strict dependency
// order: schema, owner, companies, contacts and their edges, skills,
// endorsements, positions, follows, messages. Runs exactly once per batch;
// it is neither retryable nor resumable. A statement failure propagates and
// leaves the engine partially built, since there is no cross-phase
// transaction.
func (c *Converter) Commit(ctx context.Context) error {
	if err := c.createSchema(ctx); err != nil {
		return err
	}
	if err := c.insertOwner(ctx); err != nil {
		return err
	}
	if err := c.insertCompanies(ctx); err != nil {
		return err
	}
	if err := c.insertContacts(ctx); err != nil {
		return err
	}
	if err := c.insertSkills(ctx); err != nil {
		return err
	}
	if err := c.insertEndorsements(ctx); err != nil {
		return err
	}
	if err := c.insertPositions(ctx); err != nil {
		return err
	}
	if err := c.insertCompanyFollows(ctx); err != nil {
		return err
	}
	if err := c.insertMessages(ctx); err != nil {
		return err
	}
	c.log.Append("commit completed")
	return nil
}

func (c *Converter) createSchema(ctx context.Context) error {
	c.log.Append("declaring graph schema")
	for _, stmt := range schemaStatements {
		if _, err := c.engine.Execute(ctx, stmt, nil); err != nil {
			return fmt.Errorf("declare schema: %w", err)
		}
	}
	c.log.Append("declared %d tables", len(schemaStatements))
	c.log.Append("graph schema done")
	return nil
}

func (c *Converter) insertOwner(ctx context.Context) error {
	c.log.Append("creating owner node")
	_, err := c.engine.Execute(ctx, insertPersonStmt, map[string]any{
		"firstName": c.batch.Owner.FirstName,
		"lastName":  c.batch.Owner.LastName,
		"url":       OwnerURL,
		"email":     "",
	})
	if err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}
	c.log.Append("created 1 owner node")
	c.log.Append("owner node done")
	return nil
}

func (c *Converter) insertCompanies(ctx context.Context) error {
	c.log.Append("creating Company nodes")
	stmt, err := c.engine.Prepare(ctx, insertCompanyStmt)
	if err != nil {
		return fmt.Errorf("prepare company insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range c.batch.Companies() {
		if err := stmt.Execute(ctx, map[string]any{"name": name}); err != nil {
			return fmt.Errorf("insert company %q: %w", name, err)
		}
	}
	c.log.Append("created %d Company nodes", len(c.batch.Companies()))
	c.log.Append("Company nodes done")
	return nil
}

// insertContacts creates one Person node per staged connection, a Connects
// edge from the owner, and, when both company and position are present, a
// WorksAt edge from the contact to its company.
func (c *Converter) insertContacts(ctx context.Context) error {
	c.log.Append("creating contact nodes and connections")
	personStmt, err := c.engine.Prepare(ctx, insertPersonStmt)
	if err != nil {
		return fmt.Errorf("prepare contact insert: %w", err)
	}
	defer personStmt.Close()

	connectsStmt, err := c.engine.Prepare(ctx, insertConnectsStmt)
	if err != nil {
		return fmt.Errorf("prepare connects insert: %w", err)
	}
	defer connectsStmt.Close()

	worksAtStmt, err := c.engine.Prepare(ctx, insertWorksAtStmt)
	if err != nil {
		return fmt.Errorf("prepare works-at insert: %w", err)
	}
	defer worksAtStmt.Close()

	worksAt := 0
	for _, conn := range c.batch.Connections() {
		if err := personStmt.Execute(ctx, map[string]any{
			"firstName": conn.FirstName,
			"lastName":  conn.LastName,
			"url":       conn.URL,
			"email":     conn.Email,
		}); err != nil {
			return fmt.Errorf("insert contact %s: %w", conn.URL, err)
		}
		if err := connectsStmt.Execute(ctx, map[string]any{
			"fromUrl":     OwnerURL,
			"toUrl":       conn.URL,
			"connectedOn": conn.ConnectedOn.Param(),
		}); err != nil {
			return fmt.Errorf("insert connects edge for %s: %w", conn.URL, err)
		}
		if conn.Company == "" || conn.Position == "" {
			continue
		}
		if err := worksAtStmt.Execute(ctx, map[string]any{
			"url":      conn.URL,
			"company":  conn.Company,
			"position": conn.Position,
		}); err != nil {
			return fmt.Errorf("insert works-at edge for %s: %w", conn.URL, err)
		}
		worksAt++
	}
	c.log.Append("created %d contact nodes, %d works-at edges", len(c.batch.Connections()), worksAt)
	c.log.Append("contacts done")
	return nil
}

func (c *Converter) insertSkills(ctx context.Context) error {
	c.log.Append("creating Skill nodes")
	skillStmt, err := c.engine.Prepare(ctx, insertSkillStmt)
	if err != nil {
		return fmt.Errorf("prepare skill insert: %w", err)
	}
	defer skillStmt.Close()

	hasSkillStmt, err := c.engine.Prepare(ctx, insertHasSkillStmt)
	if err != nil {
		return fmt.Errorf("prepare has-skill insert: %w", err)
	}
	defer hasSkillStmt.Close()

	for _, name := range c.batch.Skills() {
		if err := skillStmt.Execute(ctx, map[string]any{"name": name}); err != nil {
			return fmt.Errorf("insert skill %q: %w", name, err)
		}
		if err := hasSkillStmt.Execute(ctx, map[string]any{
			"url":  OwnerURL,
			"name": name,
		}); err != nil {
			return fmt.Errorf("insert has-skill edge %q: %w", name, err)
		}
	}
	c.log.Append("created %d Skill nodes", len(c.batch.Skills()))
	c.log.Append("Skill nodes done")
	return nil
}

// insertEndorsements reconciles each endorser against the staged contact
// URLs. The export omits the scheme for endorser URLs, so it is prefixed
// back before the lookup; endorsers who are not known connections are
// discarded.
func (c *Converter) insertEndorsements(ctx context.Context) error {
	c.log.Append("creating endorsement edges")
	stmt, err := c.engine.Prepare(ctx, insertEndorsesStmt)
	if err != nil {
		return fmt.Errorf("prepare endorses insert: %w", err)
	}
	defer stmt.Close()

	created := 0
	for _, e := range c.batch.Endorsements() {
		endorserURL := endorserScheme + e.Endorser
		if !c.batch.HasContact(endorserURL) {
			continue
		}
		if err := stmt.Execute(ctx, map[string]any{
			"url":        endorserURL,
			"skill":      e.Skill,
			"endorsedOn": e.EndorsedOn.Param(),
		}); err != nil {
			return fmt.Errorf("insert endorses edge %s -> %q: %w", endorserURL, e.Skill, err)
		}
		created++
	}
	c.log.Append("created %d endorsement edges", created)
	c.log.Append("endorsements done")
	return nil
}

func (c *Converter) insertPositions(ctx context.Context) error {
	c.log.Append("creating owner position edges")
	stmt, err := c.engine.Prepare(ctx, insertWorksAtStmt)
	if err != nil {
		return fmt.Errorf("prepare position insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range c.batch.Positions() {
		if err := stmt.Execute(ctx, map[string]any{
			"url":      OwnerURL,
			"company":  p.Company,
			"position": p.Position,
		}); err != nil {
			return fmt.Errorf("insert position edge %q: %w", p.Company, err)
		}
	}
	c.log.Append("created %d position edges", len(c.batch.Positions()))
	c.log.Append("positions done")
	return nil
}

func (c *Converter) insertCompanyFollows(ctx context.Context) error {
	c.log.Append("creating company follow edges")
	stmt, err := c.engine.Prepare(ctx, insertFollowStmt)
	if err != nil {
		return fmt.Errorf("prepare follow insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range c.batch.CompanyFollows() {
		if err := stmt.Execute(ctx, map[string]any{
			"url":     OwnerURL,
			"company": f.Company,
			"since":   f.Since.Param(),
		}); err != nil {
			return fmt.Errorf("insert follow edge %q: %w", f.Company, err)
		}
	}
	c.log.Append("created %d company follow edges", len(c.batch.CompanyFollows()))
	c.log.Append("company follows done")
	return nil
}

// insertMessages resolves direction by membership in the contact set: a
// known sender yields an incoming edge, a known recipient an outgoing one.
// A single fact can produce zero, one, or two edges.
func (c *Converter) insertMessages(ctx context.Context) error {
	c.log.Append("creating message edges")
	stmt, err := c.engine.Prepare(ctx, insertMessageStmt)
	if err != nil {
		return fmt.Errorf("prepare message insert: %w", err)
	}
	defer stmt.Close()

	created := 0
	for _, m := range c.batch.Messages() {
		if c.batch.HasContact(m.From) {
			if err := stmt.Execute(ctx, map[string]any{
				"fromUrl":    m.From,
				"toUrl":      OwnerURL,
				"subject":    m.Subject,
				"content":    m.Content,
				"receivedOn": m.ReceivedOn.Param(),
			}); err != nil {
				return fmt.Errorf("insert incoming message edge: %w", err)
			}
			created++
		}
		if c.batch.HasContact(m.To) {
			if err := stmt.Execute(ctx, map[string]any{
				"fromUrl":    OwnerURL,
				"toUrl":      m.To,
				"subject":    m.Subject,
				"content":    m.Content,
				"receivedOn": m.ReceivedOn.Param(),
			}); err != nil {
				return fmt.Errorf("insert outgoing message edge: %w", err)
			}
			created++
		}
	}
	c.log.Append("created %d message edges", created)
	c.log.Append("messages done")
	return nil
}
