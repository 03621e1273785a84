package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewTimelineCmd создаёт команду просмотра timeline планировщика.
func NewTimelineCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show scheduled wakeups",
		RunE: func(cmd *cobra.Command, args []string) error {
			buckets, err := clientFn().Timeline()
			if err != nil {
				return err
			}

			rows := make([][]string, len(buckets))
			for i, b := range buckets {
				ids := make([]string, len(b.WorkerIDs))
				for j, id := range b.WorkerIDs {
					ids[j] = strconv.FormatInt(id, 10)
				}
				rows[i] = []string{strconv.FormatInt(b.At, 10), b.Time, strings.Join(ids, ",")}
			}

			outputFn().Print([]string{"AT_MS", "TIME", "WORKERS"}, rows, buckets)
			return nil
		},
	}
}

// NewJournalCmd создаёт команду просмотра журнала запусков.
func NewJournalCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var workerID int64
	var status string
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List worker runs from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := ListJournalOpts{
				Status: status,
				Limit:  limit,
				Offset: offset,
			}
			if cmd.Flags().Changed("worker-id") {
				opts.WorkerID = &workerID
			}

			records, err := clientFn().ListJournal(opts)
			if err != nil {
				return err
			}

			rows := make([][]string, len(records))
			for i, r := range records {
				rows[i] = recordRow(r)
			}

			outputFn().Print(recordHeaders, rows, records)
			return nil
		},
	}

	cmd.AddCommand(newJournalShowCmd(clientFn, outputFn))

	cmd.Flags().Int64Var(&workerID, "worker-id", 0, "Filter by worker ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (RUNNING, FINISHED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")

	return cmd
}

var recordHeaders = []string{"RUN_ID", "WORKER_ID", "PROVIDER", "STATUS", "STARTED", "FINISHED"}

func recordRow(r RecordResponse) []string {
	return []string{r.RunID, strconv.FormatInt(r.WorkerID, 10), r.Provider, r.Status, r.StartedAt, r.FinishedAt}
}

func newJournalShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a journal record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := clientFn().GetJournalRecord(args[0])
			if err != nil {
				return err
			}

			outputFn().Print(recordHeaders, [][]string{recordRow(*rec)}, rec)
			return nil
		},
	}
}
