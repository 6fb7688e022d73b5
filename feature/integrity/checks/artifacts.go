package checks

import (
	"errors"
	"os"

	"content-manager/core/buildcache"
	"content-manager/core/fingerprint"

	"github.com/spf13/afero"
)

// ArtifactReport lists recorded builds whose artifact no longer matches.
type ArtifactReport struct {
	Checked  int      `json:"checked"`
	OK       []string `json:"ok"`
	Missing  []string `json:"missing"`
	Modified []string `json:"modified"`
	Errors   []string `json:"errors"`
}

// Healthy reports whether every recorded artifact is intact.
func (r ArtifactReport) Healthy() bool {
	return len(r.Missing) == 0 && len(r.Modified) == 0 && len(r.Errors) == 0
}

// CheckArtifacts re-hashes the artifact of every build record. artifactPath
// maps an owner to its artifact location.
func CheckArtifacts(fs afero.Fs, records []buildcache.Record, artifactPath func(owner string) string) ArtifactReport {
	report := ArtifactReport{
		OK:       []string{},
		Missing:  []string{},
		Modified: []string{},
		Errors:   []string{},
	}

	for _, rec := range records {
		report.Checked++
		current, err := fingerprint.File(fs, artifactPath(rec.Owner))
		switch {
		case errors.Is(err, os.ErrNotExist):
			report.Missing = append(report.Missing, rec.Owner)
		case err != nil:
			report.Errors = append(report.Errors, rec.Owner+": "+err.Error())
		case current != rec.Artifact:
			report.Modified = append(report.Modified, rec.Owner)
		default:
			report.OK = append(report.OK, rec.Owner)
		}
	}
	return report
}
