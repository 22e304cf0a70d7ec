package vault

import "github.com/org/vaultguard/pkg/models"

// Fingerprinter maps a password to an opaque, comparable fingerprint.
type Fingerprinter interface {
	Fingerprint(password string) string
}

// DuplicateGroup lists the entries sharing one password.
type DuplicateGroup struct {
	Fingerprint string   `json:"-"`
	EntryIDs    []string `json:"entry_ids"`
}

// FindDuplicates reports, per input index, whether the entry shares its
// password with another entry, plus the groups in first-seen order.
// Empty passwords are never considered duplicates.
func FindDuplicates(entries []models.PasswordEntry, fp Fingerprinter) ([]bool, []DuplicateGroup) {
	dup := make([]bool, len(entries))
	byPrint := make(map[string][]int)
	var order []string
	for i, e := range entries {
		if e.Password == "" {
			continue
		}
		key := fp.Fingerprint(e.Password)
		if _, ok := byPrint[key]; !ok {
			order = append(order, key)
		}
		byPrint[key] = append(byPrint[key], i)
	}

	var groups []DuplicateGroup
	for _, key := range order {
		idx := byPrint[key]
		if len(idx) < 2 {
			continue
		}
		g := DuplicateGroup{Fingerprint: key}
		for _, i := range idx {
			dup[i] = true
			g.EntryIDs = append(g.EntryIDs, entries[i].EntryID())
		}
		groups = append(groups, g)
	}
	return dup, groups
}
