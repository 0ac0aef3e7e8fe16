package migrate

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Report struct {
	Batch       string       `yaml:"batch"`
	Source      string       `yaml:"source,omitempty"`
	Destination string       `yaml:"destination,omitempty"`
	ContentType string       `yaml:"content-type,omitempty"`
	Succeeded   int          `yaml:"succeeded"`
	Failed      int          `yaml:"failed"`
	Items       []ReportItem `yaml:"items"`
}

type ReportItem struct {
	SourceID      int    `yaml:"source-id"`
	Title         string `yaml:"title"`
	Status        string `yaml:"status"`
	Message       string `yaml:"message,omitempty"`
	DestinationID int    `yaml:"destination-id,omitempty"`
}

// Report snapshots the batch in selection order.  Callers fill in the site names.
func (b *Batch) Report() Report {
	summary := b.Summary()
	r := Report{
		Batch:     b.ID,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
	}

	for _, id := range b.order {
		status := b.Status(id)
		item := ReportItem{
			SourceID: id,
			Title:    b.items[id].Title.Text(),
			Status:   status.State.String(),
			Message:  status.Message,
		}
		if dest, ok := b.DestinationID(id); ok {
			item.DestinationID = dest
		}
		r.Items = append(r.Items, item)
	}

	return r
}

func WriteReport(path string, r Report) error {
	out, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("migrate: couldn't marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("migrate: couldn't create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, out, 0640); err != nil {
		return fmt.Errorf("migrate: couldn't write report %s: %w", path, err)
	}

	return nil
}
