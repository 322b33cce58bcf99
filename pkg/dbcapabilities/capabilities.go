// Package dbcapabilities provides a shared registry describing the database
// technologies supported by the access layer. Adapters and the connection
// manager use it to resolve free-form type names ("postgresql", "mongo") to
// canonical identifiers and to look up uniform metadata such as default ports
// and data paradigms.
package dbcapabilities

import "strings"

// DatabaseID is the canonical identifier for a supported database technology.
type DatabaseID string

const (
	PostgreSQL DatabaseID = "postgres"
	MySQL      DatabaseID = "mysql"
	MongoDB    DatabaseID = "mongodb"
)

// DataParadigm enumerates the primary data storage paradigms a database supports.
type DataParadigm string

const (
	ParadigmRelational DataParadigm = "relational" // Tables, schemas, SQL
	ParadigmDocument   DataParadigm = "document"   // Collections, documents
)

// Capability describes a database technology in a way callers can consume
// uniformly without importing driver packages.
type Capability struct {
	// Human-friendly product name, e.g. "PostgreSQL".
	Name string `json:"name"`

	// Canonical ID used across the codebase, e.g. "postgres".
	ID DatabaseID `json:"id"`

	// Default server port used when a connection spec omits one.
	DefaultPort int `json:"defaultPort"`

	// Primary data storage paradigms supported.
	Paradigms []DataParadigm `json:"paradigms"`

	// Common aliases (driver names, env labels) that map to this database.
	Aliases []string `json:"aliases,omitempty"`
}

// All is a registry of capabilities keyed by the canonical database ID.
var All = map[DatabaseID]Capability{
	PostgreSQL: {
		Name:        "PostgreSQL",
		ID:          PostgreSQL,
		DefaultPort: 5432,
		Paradigms:   []DataParadigm{ParadigmRelational},
		Aliases:     []string{"postgresql", "pgsql"},
	},
	MySQL: {
		Name:        "MySQL",
		ID:          MySQL,
		DefaultPort: 3306,
		Paradigms:   []DataParadigm{ParadigmRelational},
		Aliases:     []string{"mariadb"},
	},
	MongoDB: {
		Name:        "MongoDB",
		ID:          MongoDB,
		DefaultPort: 27017,
		Paradigms:   []DataParadigm{ParadigmDocument},
		Aliases:     []string{"mongo"},
	},
}

// nameToID is a normalized lookup index from any known name/alias to the canonical DatabaseID.
var nameToID map[string]DatabaseID

func init() {
	nameToID = make(map[string]DatabaseID, len(All)*2)
	for id, cap := range All {
		nameToID[strings.ToLower(string(id))] = id
		if cap.Name != "" {
			nameToID[strings.ToLower(cap.Name)] = id
		}
		for _, a := range cap.Aliases {
			if a == "" {
				continue
			}
			nameToID[strings.ToLower(a)] = id
		}
	}
}

// ParseID attempts to resolve an arbitrary database name (canonical id, alias,
// or product name) to a canonical DatabaseID. Returns false if unknown.
func ParseID(name string) (DatabaseID, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}
	id, ok := nameToID[n]
	return id, ok
}

// IDs returns the list of all known database IDs.
func IDs() []DatabaseID {
	out := make([]DatabaseID, 0, len(All))
	for id := range All {
		out = append(out, id)
	}
	return out
}

// Get returns capabilities for the given ID and a boolean indicating existence.
func Get(id DatabaseID) (Capability, bool) {
	c, ok := All[id]
	return c, ok
}

// MustGet returns capabilities for the given ID and panics if not found.
func MustGet(id DatabaseID) Capability {
	c, ok := Get(id)
	if !ok {
		panic("dbcapabilities: unknown database id: " + string(id))
	}
	return c
}

// DefaultPort returns the default server port for the given ID, or 0 if unknown.
func DefaultPort(id DatabaseID) int {
	c, ok := Get(id)
	if !ok {
		return 0
	}
	return c.DefaultPort
}

// SupportsParadigm reports whether the database supports a given data paradigm.
func SupportsParadigm(id DatabaseID, p DataParadigm) bool {
	c, ok := Get(id)
	if !ok {
		return false
	}
	for _, dp := range c.Paradigms {
		if dp == p {
			return true
		}
	}
	return false
}
