package probe

import (
	"time"

	"github.com/google/uuid"

	"github.com/petrobytes/probecalc-cli/internal/utils"
)

// Manifest records one batch run so result files stay traceable to their
// inputs and targets. It is written next to the results CSV.
type Manifest struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Input      string    `json:"input"`
	Sheet      string    `json:"sheet,omitempty"`
	Oxides     []string  `json:"oxides"`
	AFU        float64   `json:"afu"`
	CFU        float64   `json:"cfu,omitempty"`
	Wiggle     float64   `json:"wiggle,omitempty"`
	Method     string    `json:"method,omitempty"`
	Rows       int       `json:"rows"`
	Accepted   int       `json:"accepted,omitempty"`
	Rejected   int       `json:"rejected,omitempty"`
	Degenerate int       `json:"degenerate"`
	Output     string    `json:"output,omitempty"`
}

// NewManifest stamps a fresh manifest with a run id and timestamp.
func NewManifest(input string) *Manifest {
	return &Manifest{RunID: uuid.NewString(), CreatedAt: time.Now(), Input: input}
}

// CountDegenerate tallies rows that failed normalization.
func CountDegenerate(rows []CationRow) int {
	n := 0
	for _, r := range rows {
		if !r.Valid() {
			n++
		}
	}
	return n
}

// Save writes the manifest as indented JSON using an atomic rename.
func (m *Manifest) Save(path string) error {
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, data)
}
