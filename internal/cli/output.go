package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/vietddude/netwatch/internal/core/domain"
	"github.com/vietddude/netwatch/internal/monitoring/forks"
)

const unknown = "n/a"

func renderTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(data)
	table.Render()
	fmt.Fprintln(w)
}

func forkRows(timeline []domain.DisplayFork, now time.Time) [][]string {
	rows := make([][]string, 0, len(timeline))
	for _, f := range timeline {
		activation := "genesis"
		if !f.IsGenesis {
			at := time.Unix(f.Timestamp, 0)
			activation = fmt.Sprintf("%s (%s)", at.UTC().Format("2006-01-02 15:04 MST"), humanize.RelTime(at, now, "ago", "from now"))
		}
		status := "scheduled"
		if forks.IsActive(f, now) {
			status = "active"
		}
		rows = append(rows, []string{
			f.Name,
			humanize.Comma(int64(f.Epoch)),
			activation,
			str(f.ExecutionVersion),
			str(f.ConsensusVersion),
			status,
		})
	}
	return rows
}

func healthRows(state *domain.State) [][]string {
	r := state.Health
	rows := [][]string{
		{"Status", string(r.Status)},
		{"Finalized lag", epochs(r.FinalizedLagEpochs)},
		{"Justified lag", epochs(r.JustifiedLagEpochs)},
		{"Finalizing", strconv.FormatBool(r.IsFinalizing)},
		{"Justifying", strconv.FormatBool(r.IsJustifying)},
		{"Unfinality", unfinality(r)},
		{"Participation", percent(r.ParticipationPercent)},
		{"Participation low", strconv.FormatBool(r.IsParticipationLow)},
		{"Block production", percent(r.BlockProductionPercent)},
	}
	if r.SyncParticipationAvg != nil {
		rows = append(rows, []string{"Sync participation", strconv.FormatFloat(*r.SyncParticipationAvg, 'f', 2, 64)})
	}
	if live := state.Live; live != nil {
		rows = append(rows,
			[]string{"Head", fmt.Sprintf("slot %s / epoch %s", humanize.Comma(int64(live.HeadSlot)), humanize.Comma(int64(live.HeadEpoch)))},
			[]string{"Active validators", humanize.Comma(int64(live.ActiveValidators))},
			[]string{"Validator queue", fmt.Sprintf("%d entering / %d exiting", live.EnteringValidators, live.ExitingValidators)},
		)
		if live.WallclockEpoch > 0 {
			rows = append(rows, []string{"Head delay", fmt.Sprintf("%d epochs", live.HeadDelayEpochs)})
		}
	}
	rows = append(rows, []string{"Updated", state.UpdatedAgo})
	return rows
}

func probeRows(set *domain.ProbeSet) [][]string {
	rows := make([][]string, 0, len(set.Endpoints))
	for _, ep := range set.Endpoints {
		latency := fmt.Sprintf("%dms", ep.LatencyMs)
		if ep.Fallback {
			latency += " (opaque)"
		}
		rows = append(rows, []string{ep.ID, string(ep.Kind), ep.URL, string(ep.Status), latency, ep.Error})
	}
	return rows
}

func str(s *string) string {
	if s == nil {
		return unknown
	}
	return *s
}

func epochs(v *int64) string {
	if v == nil {
		return unknown
	}
	return fmt.Sprintf("%d epochs", *v)
}

func percent(v *float64) string {
	if v == nil {
		return unknown
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + "%"
}

func unfinality(r domain.HealthReport) string {
	if r.UnfinalityEpochs == nil || r.UnfinalityDurationSeconds == nil {
		return unknown
	}
	if *r.UnfinalityEpochs == 0 {
		return "none"
	}
	d := time.Duration(*r.UnfinalityDurationSeconds) * time.Second
	return fmt.Sprintf("%d epochs (%s)", *r.UnfinalityEpochs, d)
}
