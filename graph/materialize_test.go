package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("phases run in dependency order", func(t *testing.T) {
		engine := newFakeEngine()
		conv := NewConverter(engine, nil)
		conv.Batch().Owner = Owner{FirstName: "Ada", LastName: "Lovelace"}
		conv.Batch().AddCompany("Acme")
		conv.Batch().AddConnection(Connection{FirstName: "Eve", URL: "https://www.linkedin.com/in/eve"})
		conv.Batch().AddSkill("Go")

		require.NoError(t, conv.Commit(ctx))

		var order []string
		for _, e := range engine.executed {
			switch {
			case strings.HasPrefix(e.text, "CREATE NODE TABLE"), strings.HasPrefix(e.text, "CREATE REL TABLE"):
				order = append(order, "schema")
			case strings.HasPrefix(e.text, "CREATE (p:Person"):
				order = append(order, "person")
			case strings.HasPrefix(e.text, "CREATE (c:Company"):
				order = append(order, "company")
			case strings.HasPrefix(e.text, "CREATE (s:Skill"):
				order = append(order, "skill")
			}
		}
		require.Len(t, order, 13)
		assert.Equal(t, []string{
			"schema", "schema", "schema", "schema", "schema", "schema", "schema", "schema", "schema",
			"person", "company", "person", "skill",
		}, order)
	})

	t.Run("schema declares all nine tables", func(t *testing.T) {
		engine := newFakeEngine()
		conv := NewConverter(engine, nil)
		require.NoError(t, conv.Commit(ctx))

		nodeDDL := engine.executedWithPrefix("CREATE NODE TABLE")
		relDDL := engine.executedWithPrefix("CREATE REL TABLE")
		require.Len(t, nodeDDL, 3)
		require.Len(t, relDDL, 6)
		assert.Equal(t, "CREATE NODE TABLE Company (name STRING, PRIMARY KEY(name))", nodeDDL[0].text)
		assert.Contains(t, relDDL[0].text, "Connects (FROM Person TO Person")
	})

	t.Run("owner node carries the reserved url", func(t *testing.T) {
		engine := newFakeEngine()
		conv := NewConverter(engine, nil)
		conv.Batch().Owner = Owner{FirstName: "Ada", LastName: "Lovelace"}
		require.NoError(t, conv.Commit(ctx))

		persons := engine.executedWithPrefix("CREATE (p:Person")
		require.Len(t, persons, 1)
		assert.Equal(t, OwnerURL, persons[0].params["url"])
		assert.Equal(t, "Ada", persons[0].params["firstName"])
		assert.Equal(t, "", persons[0].params["email"])
	})

	t.Run("contacts produce person nodes, connects edges, and works-at edges", func(t *testing.T) {
		engine := newFakeEngine()
		conv := NewConverter(engine, nil)
		conv.Batch().AddConnection(Connection{
			FirstName:   "Eve",
			LastName:    "Moneypenny",
			URL:         "https://www.linkedin.com/in/eve",
			Email:       "eve@example.com",
			Company:     "MI6",
			Position:    "Agent",
			ConnectedOn: ParseConnectedOn("16 Aug 2023"),
		})
		conv.Batch().AddConnection(Connection{
			FirstName: "Bob",
			URL:       "https://www.linkedin.com/in/bob",
			Company:   "Acme",
		})
		require.NoError(t, conv.Commit(ctx))

		persons := engine.executedWithPrefix("CREATE (p:Person")
		require.Len(t, persons, 3)

		connects := engine.executedWithPrefix("MATCH (a:Person), (b:Person) WHERE a.url = $fromUrl AND b.url = $toUrl CREATE (a)-[r:Connects")
		require.Len(t, connects, 2)
		assert.Equal(t, OwnerURL, connects[0].params["fromUrl"])
		assert.Equal(t, "https://www.linkedin.com/in/eve", connects[0].params["toUrl"])
		assert.Equal(t, "2023-08-16", connects[0].params["connectedOn"])

		// Bob has a company but no position, so only Eve gets a works-at edge
		worksAt := engine.executedWithPrefix("MATCH (p:Person), (c:Company) WHERE p.url = $url AND c.name = $company CREATE (p)-[r:WorksAt")
		require.Len(t, worksAt, 1)
		assert.Equal(t, "https://www.linkedin.com/in/eve", worksAt[0].params["url"])
		assert.Equal(t, "Agent", worksAt[0].params["position"])
	})

	t.Run("unparseable connected-on binds null", func(t *testing.T) {
		engine := newFakeEngine()
		conv := NewConverter(engine, nil)
		conv.Batch().AddConnection(Connection{FirstName: "Eve", URL: "u", ConnectedOn: ParseConnectedOn("garbage")})
		require.NoError(t, conv.Commit(ctx))

		connects := engine.executedWithPrefix("MATCH (a:Person), (b:Person) WHERE a.url = $fromUrl AND b.url = $toUrl CREATE (a)-[r:Connects")
		require.Len(t, connects, 1)
		assert.Nil(t, connects[0].params["connectedOn"])
	})

	t.Run("every skill gets an owner has-skill edge", func(t *testing.T) {
		engine := newFakeEngine()
		conv := NewConverter(engine, nil)
		conv.Batch().AddSkill("Go")
		conv.Batch().AddSkill("SQL")
		require.NoError(t, conv.Commit(ctx))

		hasSkill := engine.executedWithPrefix("MATCH (p:Person), (s:Skill) WHERE p.url = $url AND s.name = $name CREATE (p)-[r:HasSkill")
		require.Len(t, hasSkill, 2)
		for _, e := range hasSkill {
			assert.Equal(t, OwnerURL, e.params["url"])
		}
	})

	t.Run("endorsers are reconciled against the contact set", func(t *testing.T) {
		engine := newFakeEngine()
		conv := NewConverter(engine, nil)
		conv.Batch().AddConnection(Connection{FirstName: "Ada", URL: "https://www.linkedin.com/in/ada"})
		conv.Batch().AddSkill("Go")
		conv.Batch().AddEndorsement(Endorsement{
			Skill:      "Go",
			Endorser:   "www.linkedin.com/in/ada",
			EndorsedOn: ParseEndorsedOn("2023/08/16 08:30:00 UTC"),
		})
		conv.Batch().AddEndorsement(Endorsement{Skill: "Go", Endorser: "www.linkedin.com/in/stranger"})
		require.NoError(t, conv.Commit(ctx))

		endorses := engine.executedWithPrefix("MATCH (p:Person), (s:Skill) WHERE p.url = $url AND s.name = $skill CREATE (p)-[r:Endorses")
		require.Len(t, endorses, 1)
		assert.Equal(t, "https://www.linkedin.com/in/ada", endorses[0].params["url"])
		assert.Equal(t, "Go", endorses[0].params["skill"])
		assert.NotNil(t, endorses[0].params["endorsedOn"])
	})

	t.Run("owner positions and follows attach to the owner", func(t *testing.T) {
		engine := newFakeEngine()
		conv := NewConverter(engine, nil)
		conv.Batch().AddCompany("Acme")
		conv.Batch().AddPosition(Position{Company: "Acme", Position: "Engineer"})
		conv.Batch().AddCompanyFollow(CompanyFollow{
			Company: "Acme",
			Since:   ParseFollowedOn("Wed Aug 16 08:30:00 UTC 2023"),
		})
		require.NoError(t, conv.Commit(ctx))

		worksAt := engine.executedWithPrefix("MATCH (p:Person), (c:Company) WHERE p.url = $url AND c.name = $company CREATE (p)-[r:WorksAt")
		require.Len(t, worksAt, 1)
		assert.Equal(t, OwnerURL, worksAt[0].params["url"])

		follows := engine.executedWithPrefix("MATCH (p:Person), (c:Company) WHERE p.url = $url AND c.name = $company CREATE (p)-[r:GetNotification")
		require.Len(t, follows, 1)
		assert.Equal(t, OwnerURL, follows[0].params["url"])
		assert.NotNil(t, follows[0].params["since"])
	})

	t.Run("message direction is resolved by contact membership", func(t *testing.T) {
		engine := newFakeEngine()
		conv := NewConverter(engine, nil)
		conv.Batch().AddConnection(Connection{FirstName: "Ada", URL: "https://www.linkedin.com/in/ada"})

		// known sender: incoming edge only
		conv.Batch().AddMessage(Message{From: "https://www.linkedin.com/in/ada", To: "owner", Subject: "in"})
		// known recipient: outgoing edge only
		conv.Batch().AddMessage(Message{From: "owner", To: "https://www.linkedin.com/in/ada", Subject: "out"})
		// neither endpoint known: no edge
		conv.Batch().AddMessage(Message{From: "x", To: "y", Subject: "none"})
		// both endpoints known: two edges
		conv.Batch().AddMessage(Message{
			From:    "https://www.linkedin.com/in/ada",
			To:      "https://www.linkedin.com/in/ada",
			Subject: "both",
		})
		require.NoError(t, conv.Commit(ctx))

		messages := engine.executedWithPrefix("MATCH (a:Person), (b:Person) WHERE a.url = $fromUrl AND b.url = $toUrl CREATE (a)-[r:Messages")
		require.Len(t, messages, 4)

		assert.Equal(t, "https://www.linkedin.com/in/ada", messages[0].params["fromUrl"])
		assert.Equal(t, OwnerURL, messages[0].params["toUrl"])
		assert.Equal(t, "in", messages[0].params["subject"])

		assert.Equal(t, OwnerURL, messages[1].params["fromUrl"])
		assert.Equal(t, "https://www.linkedin.com/in/ada", messages[1].params["toUrl"])
		assert.Equal(t, "out", messages[1].params["subject"])

		assert.Equal(t, "both", messages[2].params["subject"])
		assert.Equal(t, "both", messages[3].params["subject"])
	})

	t.Run("statement failure aborts the commit", func(t *testing.T) {
		engine := newFakeEngine()
		engine.execErrs["CREATE (c:Company"] = errors.New("constraint violation")
		conv := NewConverter(engine, nil)
		conv.Batch().AddCompany("Acme")
		conv.Batch().AddSkill("Go")

		err := conv.Commit(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `insert company "Acme"`)

		// later phases never ran
		assert.Empty(t, engine.executedWithPrefix("CREATE (s:Skill"))
	})

	t.Run("schema failure stops before any data", func(t *testing.T) {
		engine := newFakeEngine()
		engine.execErrs["CREATE REL TABLE Connects"] = errors.New("exists")
		conv := NewConverter(engine, nil)

		err := conv.Commit(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "declare schema")
		assert.Empty(t, engine.executedWithPrefix("CREATE (p:Person"))
	})

	t.Run("empty batch still creates schema and owner", func(t *testing.T) {
		engine := newFakeEngine()
		conv := NewConverter(engine, nil)
		require.NoError(t, conv.Commit(ctx))

		assert.Len(t, engine.executedWithPrefix("CREATE NODE TABLE"), 3)
		persons := engine.executedWithPrefix("CREATE (p:Person")
		require.Len(t, persons, 1)
		assert.Equal(t, OwnerURL, persons[0].params["url"])
		lines := conv.Log().Lines()
		assert.Contains(t, lines[len(lines)-1], "commit completed")
	})
}

func TestImportScenario(t *testing.T) {
	// end to end through ProcessFile and Commit, engine faked
	ctx := context.Background()
	engine := newFakeEngine()

	engine.loadResults["Profile.csv"] = csvResult(
		[]string{"First Name", "Last Name", "Headline", "Geo Location", "Industry", "Summary"},
		[]string{"Ada", "Lovelace", "Analyst", "London", "Computing", ""},
	)
	engine.loadResults["Connections.csv"] = csvResult(
		[]string{"Notes:", "col1", "col2", "col3", "col4", "col5", "col6"},
		[]string{"First Name", "Last Name", "URL", "Email Address", "Company", "Position", "Connected On"},
		[]string{"Eve", "Moneypenny", "https://www.linkedin.com/in/eve", "", "MI6", "Agent", "16 Aug 2023"},
	)
	engine.loadResults["Skills.csv"] = csvResult([]string{"Name"}, []string{"Go"}, []string{"Go"})
	engine.loadResults["Endorsement_Received_Info.csv"] = csvResult(
		[]string{"Skill Name", "Endorser Public Url", "Endorsement Date"},
		[]string{"Go", "www.linkedin.com/in/eve", "2023/08/16 08:30:00 UTC"},
	)

	conv := NewConverter(engine, nil)
	conv.ProcessFile(ctx, "Profile.csv", nil)
	conv.ProcessFile(ctx, "Connections.csv", nil)
	conv.ProcessFile(ctx, "Skills.csv", nil)
	conv.ProcessFile(ctx, "Endorsement_Received_Info.csv", nil)
	require.NoError(t, conv.Commit(ctx))

	// owner plus one contact
	assert.Len(t, engine.executedWithPrefix("CREATE (p:Person"), 2)
	// MI6 arrived via the connection row
	companies := engine.executedWithPrefix("CREATE (c:Company")
	require.Len(t, companies, 1)
	assert.Equal(t, "MI6", companies[0].params["name"])
	// skills deduped
	assert.Len(t, engine.executedWithPrefix("CREATE (s:Skill"), 1)
	// the endorser is a known contact, so the edge materializes
	endorses := engine.executedWithPrefix("MATCH (p:Person), (s:Skill) WHERE p.url = $url AND s.name = $skill CREATE (p)-[r:Endorses")
	require.Len(t, endorses, 1)
	assert.Equal(t, "https://www.linkedin.com/in/eve", endorses[0].params["url"])
}
