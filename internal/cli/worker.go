package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewWorkerCmd создаёт группу команд для управления воркерами.
func NewWorkerCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage workers",
	}

	cmd.AddCommand(
		newWorkerListCmd(clientFn, outputFn),
		newWorkerCreateCmd(clientFn, outputFn),
		newWorkerShowCmd(clientFn, outputFn),
		newWorkerStateCmd(clientFn, outputFn),
		newWorkerInputCmd(clientFn, outputFn),
		newWorkerStopCmd(clientFn, outputFn),
	)

	return cmd
}

var workerHeaders = []string{"ID", "PROVIDER", "STATE", "CYCLE", "CYCLE_TIME_MS", "INPUTS"}

func workerRow(w WorkerResponse) []string {
	return []string{
		strconv.FormatInt(w.ID, 10),
		w.Provider,
		w.State,
		strconv.FormatInt(w.Cycle, 10),
		strconv.FormatInt(w.CycleTimeMillis, 10),
		strconv.Itoa(w.Inputs),
	}
}

func newWorkerListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			workers, err := client.ListWorkers()
			if err != nil {
				return err
			}

			rows := make([][]string, len(workers))
			for i, w := range workers {
				rows[i] = workerRow(w)
			}

			out.Print(workerHeaders, rows, workers)
			return nil
		},
	}
}

func newWorkerCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var id int64
	var settings []string
	var settingsJSON string
	var endTime int64

	cmd := &cobra.Command{
		Use:   "create PROVIDER",
		Short: "Create and start a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateWorkerRequest{
				Provider:      args[0],
				EndTimeMillis: endTime,
			}

			if cmd.Flags().Changed("id") {
				req.ID = &id
			}

			if settingsJSON != "" {
				if err := json.Unmarshal([]byte(settingsJSON), &req.Settings); err != nil {
					return fmt.Errorf("invalid --settings: %w", err)
				}
			}

			if len(settings) > 0 {
				if req.Settings == nil {
					req.Settings = make(map[string]any)
				}
				for _, kv := range settings {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid setting format %q, expected KEY=VALUE", kv)
					}
					req.Settings[parts[0]] = parseValue(parts[1])
				}
			}

			w, err := client.CreateWorker(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Worker created: %d", w.ID))
			out.Print(workerHeaders, [][]string{workerRow(*w)}, w)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Explicit worker ID (assigned by host if not specified)")
	cmd.Flags().StringSliceVar(&settings, "set", nil, "Processor setting as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&settingsJSON, "settings", "", "Processor settings as a JSON object")
	cmd.Flags().Int64Var(&endTime, "end-time", 0, "End time in unix milliseconds (0 = unbounded)")

	return cmd
}

func newWorkerShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show worker details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			w, err := clientFn().GetWorker(id)
			if err != nil {
				return err
			}

			headers := append(append([]string{}, workerHeaders...), "END_TIME_MS")
			row := append(workerRow(*w), strconv.FormatInt(w.EndTimeMillis, 10))
			outputFn().Print(headers, [][]string{row}, w)
			return nil
		},
	}
}

func newWorkerStateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var stateArgs []string

	cmd := &cobra.Command{
		Use:   "state ID",
		Short: "Show processor state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			st, err := clientFn().GetState(id, stateArgs)
			if err != nil {
				return err
			}

			outputFn().JSON(st)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&stateArgs, "arg", nil, "Argument passed to the processor (repeatable)")

	return cmd
}

func newWorkerInputCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "input ID INDEX VALUE",
		Short: "Deliver a value to a worker input",
		Long:  "Deliver a value to a worker input. VALUE is parsed as JSON, falling back to a plain string.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid input index %q", args[1])
			}

			if err := clientFn().DeliverInput(id, index, parseValue(args[2])); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Input delivered: worker %d, input %d", id, index))
			return nil
		},
	}
}

func newWorkerStopCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stop ID",
		Short: "Stop a worker after its current cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := clientFn().StopWorker(id); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Worker stopping: %d", id))
			return nil
		},
	}
}

// NewProviderCmd создаёт команду для списка провайдеров.
func NewProviderCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List processor providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := clientFn().ListProviders()
			if err != nil {
				return err
			}

			rows := make([][]string, len(names))
			for i, n := range names {
				rows[i] = []string{n}
			}

			outputFn().Print([]string{"NAME"}, rows, names)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid worker ID %q", s)
	}
	return id, nil
}

// parseValue разбирает s как JSON, иначе возвращает строку.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
