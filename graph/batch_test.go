package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch(t *testing.T) {
	t.Run("company and skill sets are ordered and idempotent", func(t *testing.T) {
		b := NewBatch()
		b.AddCompany("Acme")
		b.AddCompany("Globex")
		b.AddCompany("Acme")
		b.AddCompany("")
		assert.Equal(t, []string{"Acme", "Globex"}, b.Companies())
		assert.True(t, b.HasCompany("Acme"))
		assert.False(t, b.HasCompany("Initech"))

		b.AddSkill("Go")
		b.AddSkill("SQL")
		b.AddSkill("Go")
		b.AddSkill("")
		assert.Equal(t, []string{"Go", "SQL"}, b.Skills())
	})

	t.Run("connections dedup by url, first wins", func(t *testing.T) {
		b := NewBatch()
		b.AddConnection(Connection{FirstName: "Ada", URL: "https://www.linkedin.com/in/ada"})
		b.AddConnection(Connection{FirstName: "Adelaide", URL: "https://www.linkedin.com/in/ada"})
		b.AddConnection(Connection{URL: ""})

		require.Len(t, b.Connections(), 1)
		assert.Equal(t, "Ada", b.Connections()[0].FirstName)
		assert.True(t, b.HasContact("https://www.linkedin.com/in/ada"))
		assert.False(t, b.HasContact(""))
	})

	t.Run("endorsements dedup on endorser and skill", func(t *testing.T) {
		b := NewBatch()
		b.AddEndorsement(Endorsement{Endorser: "www.linkedin.com/in/ada", Skill: "Go"})
		b.AddEndorsement(Endorsement{Endorser: "www.linkedin.com/in/ada", Skill: "Go"})
		b.AddEndorsement(Endorsement{Endorser: "www.linkedin.com/in/ada", Skill: "SQL"})
		b.AddEndorsement(Endorsement{Endorser: "www.linkedin.com/in/bob", Skill: "Go"})
		assert.Len(t, b.Endorsements(), 3)
	})

	t.Run("positions follows and messages keep duplicates", func(t *testing.T) {
		b := NewBatch()
		b.AddPosition(Position{Company: "Acme", Position: "Engineer"})
		b.AddPosition(Position{Company: "Acme", Position: "Engineer"})
		assert.Len(t, b.Positions(), 2)

		b.AddCompanyFollow(CompanyFollow{Company: "Acme"})
		b.AddCompanyFollow(CompanyFollow{Company: "Acme"})
		assert.Len(t, b.CompanyFollows(), 2)

		b.AddMessage(Message{From: "a", To: "b"})
		b.AddMessage(Message{From: "a", To: "b"})
		assert.Len(t, b.Messages(), 2)
	})

	t.Run("reset clears everything", func(t *testing.T) {
		b := NewBatch()
		b.Owner = Owner{FirstName: "Ada"}
		b.AddCompany("Acme")
		b.AddSkill("Go")
		b.AddConnection(Connection{URL: "u"})
		b.AddEndorsement(Endorsement{Skill: "Go"})
		b.AddPosition(Position{Company: "Acme"})
		b.AddCompanyFollow(CompanyFollow{Company: "Acme"})
		b.AddMessage(Message{From: "a", To: "b"})

		b.Reset()
		assert.Equal(t, Owner{}, b.Owner)
		assert.Empty(t, b.Companies())
		assert.Empty(t, b.Skills())
		assert.Empty(t, b.Connections())
		assert.Empty(t, b.Endorsements())
		assert.Empty(t, b.Positions())
		assert.Empty(t, b.CompanyFollows())
		assert.Empty(t, b.Messages())
		assert.False(t, b.HasContact("u"))

		// staging works again after reset
		b.AddConnection(Connection{URL: "u"})
		assert.Len(t, b.Connections(), 1)
	})
}
