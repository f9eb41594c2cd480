package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/soltixdb/diskhealth/internal/capacity"
	"github.com/soltixdb/diskhealth/internal/disks"
	"github.com/soltixdb/diskhealth/internal/ingest"
	"github.com/soltixdb/diskhealth/internal/models"
)

// report is the evaluation of one PDisk of a snapshot
type report struct {
	NodeID   uint32          `json:"node_id"`
	PDiskID  uint32          `json:"pdisk_id"`
	Severity string          `json:"severity"`
	Page     disks.PDiskPage `json:"page"`
}

func main() {
	file := flag.String("file", "", "Snapshot file (YAML or JSON)")
	format := flag.String("format", "table", "Output format (table, json)")
	flag.Parse()

	if *file == "" {
		log.Fatal("Error: -file parameter is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Error reading snapshot: %v\n", err)
	}

	snapshot, err := parseSnapshot(data)
	if err != nil {
		log.Fatalf("Error parsing snapshot: %v\n", err)
	}

	reports := evaluate(snapshot)
	if len(reports) == 0 {
		log.Printf("Warning: No PDisks found in %s\n", *file)
		return
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(reports)
	case "table":
		err = writeTable(os.Stdout, reports)
	default:
		log.Fatalf("Error: unknown format '%s' (expected table or json)\n", *format)
	}
	if err != nil {
		log.Fatalf("Error writing output: %v\n", err)
	}
}

// parseSnapshot decodes a YAML or JSON snapshot. YAML is a superset of JSON,
// so both go through the YAML decoder and are then mapped onto the JSON
// field names of the models.
func parseSnapshot(data []byte) (*models.Snapshot, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("snapshot is empty")
	}

	encoded, err := json.Marshal(normalize(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode snapshot: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(encoded, &snapshot); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return &snapshot, nil
}

// normalize turns YAML maps with non-string keys into JSON objects
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []interface{}:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	default:
		return v
	}
}

func evaluate(snapshot *models.Snapshot) []report {
	reports := make([]report, 0, len(snapshot.PDisks))
	for i := range snapshot.PDisks {
		ps := &snapshot.PDisks[i]
		page := disks.PreparePDiskInfo(ps.PDiskInfoResponse, &ps.NodeID, &ps.PDiskID)
		reports = append(reports, report{
			NodeID:   ps.NodeID,
			PDiskID:  ps.PDiskID,
			Severity: ingest.Worst(page).String(),
			Page:     page,
		})
	}
	return reports
}

func writeTable(w io.Writer, reports []report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PDISK\tSTATE\tSEVERITY\tSLOT\tKIND\tUSED\tTOTAL\tUSAGE")
	for _, r := range reports {
		pdisk := r.Page.PDisk
		for _, slot := range r.Page.Slots {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				pdisk.StringifiedID,
				orDash(string(pdisk.State)),
				slot.Severity,
				orDash(slot.ID),
				slot.Kind,
				formatValue(slot.Used, ""),
				formatValue(slot.Total, ""),
				formatValue(slot.UsagePercent, "%"),
			)
		}
	}
	return tw.Flush()
}

func formatValue(v capacity.Value, suffix string) string {
	if !v.Known() {
		return "-"
	}
	return fmt.Sprintf("%.0f%s", float64(v), suffix)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
