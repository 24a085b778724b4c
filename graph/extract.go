package graph

import (
	"fmt"
	"strings"
)

// rowString reads a column value as trimmed text. Engines hand back decoded
// CSV cells as strings, but NULLs and the odd typed value still appear.
func rowString(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// positional reads the idx-th column of a row using the result's column
// order. Used where the export's header detection is unreliable and rows
// must be read by position, not by name.
func positional(res *Result, row map[string]any, idx int) string {
	if idx < 0 || idx >= len(res.Columns) {
		return ""
	}
	return rowString(row, res.Columns[idx])
}

// ApplyProfile stages the owner's profile fields. Only the first decoded row
// is meaningful; an empty file is a no-op.
func (b *Batch) ApplyProfile(res *Result) {
	if len(res.Rows) == 0 {
		return
	}
	row := res.Rows[0]
	b.Owner = Owner{
		FirstName:   rowString(row, "First Name"),
		LastName:    rowString(row, "Last Name"),
		Headline:    rowString(row, "Headline"),
		GeoLocation: rowString(row, "Geo Location"),
		Industry:    rowString(row, "Industry"),
		Summary:     rowString(row, "Summary"),
	}
}

// ApplyConnections stages contacts and their connection facts.
//
// Connections.csv ships with a "Notes:" preamble that defeats header
// detection: the decoder consumes the preamble as the header row, so the
// first decoded row is the real header and must be discarded, and the
// remaining rows are read by positional column index. The literal column
// name "Notes:" aliases the first-name field when present.
func (b *Batch) ApplyConnections(res *Result) {
	for i := 1; i < len(res.Rows); i++ {
		row := res.Rows[i]
		firstName := rowString(row, "Notes:")
		if firstName == "" {
			firstName = positional(res, row, 0)
		}
		c := Connection{
			FirstName:   firstName,
			LastName:    positional(res, row, 1),
			URL:         positional(res, row, 2),
			Email:       positional(res, row, 3),
			Company:     positional(res, row, 4),
			Position:    positional(res, row, 5),
			ConnectedOn: ParseConnectedOn(positional(res, row, 6)),
		}
		if (c.FirstName == "" && c.LastName == "") || c.URL == "" {
			continue
		}
		b.AddConnection(c)
		if c.Company == "" {
			continue
		}
		b.AddCompany(c.Company)
	}
}

// ApplySkills stages skill names. Blank names are dropped; duplicates
// collapse into the identity set.
func (b *Batch) ApplySkills(res *Result) {
	for _, row := range res.Rows {
		b.AddSkill(rowString(row, "Name"))
	}
}

// ApplyCompanyFollows stages follow facts, inserting each organization into
// the company identity set alongside the fact.
func (b *Batch) ApplyCompanyFollows(res *Result) {
	for _, row := range res.Rows {
		company := rowString(row, "Organization")
		if company == "" {
			continue
		}
		b.AddCompany(company)
		b.AddCompanyFollow(CompanyFollow{
			Company: company,
			Since:   ParseFollowedOn(rowString(row, "Followed On")),
		})
	}
}

// ApplyEndorsements stages received endorsements. The skill always joins the
// identity set; the endorsement fact is staged even when the endorser is
// missing, since endorser reconciliation happens at commit time.
func (b *Batch) ApplyEndorsements(res *Result) {
	for _, row := range res.Rows {
		skill := rowString(row, "Skill Name")
		b.AddSkill(skill)
		b.AddEndorsement(Endorsement{
			Skill:      skill,
			Endorser:   rowString(row, "Endorser Public Url"),
			EndorsedOn: ParseEndorsedOn(rowString(row, "Endorsement Date")),
		})
	}
}

// ApplyPositions stages the owner's positions, inserting each company into
// the identity set alongside the fact.
func (b *Batch) ApplyPositions(res *Result) {
	for _, row := range res.Rows {
		company := rowString(row, "Company Name")
		position := rowString(row, "Title")
		if company != "" {
			b.AddCompany(company)
		}
		b.AddPosition(Position{Company: company, Position: position})
	}
}

// ApplyMessages stages message facts. Rows missing either endpoint URL are
// dropped.
func (b *Batch) ApplyMessages(res *Result) {
	for _, row := range res.Rows {
		m := Message{
			ConversationID: rowString(row, "CONVERSATION ID"),
			From:           rowString(row, "SENDER PROFILE URL"),
			To:             rowString(row, "RECIPIENT PROFILE URLS"),
			Subject:        rowString(row, "SUBJECT"),
			Content:        rowString(row, "CONTENT"),
			ReceivedOn:     ParseMessageTime(rowString(row, "DATE")),
		}
		if m.From == "" || m.To == "" {
			continue
		}
		b.AddMessage(m)
	}
}
