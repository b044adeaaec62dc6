package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Upload is one published version of a package. Files maps piece names
// (relative paths) to content store references.
type Upload struct {
	Version     string            `json:"version" bson:"version"`
	Description string            `json:"description" bson:"description"`
	Files       map[string]string `json:"files" bson:"files"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
}

// Package is the authoritative record of a registered package.
type Package struct {
	Name      string    `json:"name" bson:"_id"`
	Owner     uuid.UUID `json:"owner" bson:"owner"`
	Uploads   []Upload  `json:"uploads" bson:"uploads"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// HasVersion reports whether the version is already among recorded uploads.
func (p *Package) HasVersion(version string) bool {
	if p == nil {
		return false
	}
	for _, u := range p.Uploads {
		if u.Version == version {
			return true
		}
	}
	return false
}

// Latest returns the most recently recorded upload, or nil for a package
// with no uploads.
func (p *Package) Latest() *Upload {
	if p == nil || len(p.Uploads) == 0 {
		return nil
	}
	return &p.Uploads[len(p.Uploads)-1]
}

// Summary is the listing view of a package.
type Summary struct {
	Name          string    `json:"name"`
	Owner         uuid.UUID `json:"owner"`
	Description   string    `json:"description"`
	LatestVersion string    `json:"latest_version"`
	Versions      int       `json:"versions"`
}

// Summarize builds a Summary from a full package record.
func Summarize(p *Package) Summary {
	s := Summary{
		Name:     p.Name,
		Owner:    p.Owner,
		Versions: len(p.Uploads),
	}
	if latest := p.Latest(); latest != nil {
		s.Description = latest.Description
		s.LatestVersion = latest.Version
	}
	return s
}
