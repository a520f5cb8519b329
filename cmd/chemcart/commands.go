package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"chem-purchase-assistant/config"
	"chem-purchase-assistant/logging"
	"chem-purchase-assistant/models"
	"chem-purchase-assistant/utils"
	"chem-purchase-assistant/widget"
)

// recordingSubmitter keeps the last order so it can be exported after the run
type recordingSubmitter struct {
	next widget.OrderSubmitter

	mu   sync.Mutex
	last *models.PurchaseOrderResult
}

func (r *recordingSubmitter) SubmitPurchase(ctx context.Context, supplier string, items []string) (*models.PurchaseOrderResult, error) {
	result, err := r.next.SubmitPurchase(ctx, supplier, items)
	if err == nil {
		r.mu.Lock()
		r.last = result
		r.mu.Unlock()
	}
	return result, err
}

func (r *recordingSubmitter) Last() *models.PurchaseOrderResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func newCommand(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	textFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "text",
			Aliases: []string{"t"},
			Usage:   "chemical list, one item per line",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "read the chemical list from a file (- for stdin)",
		},
	}
	credentialFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Sources: cli.EnvVars("CHEMCART_USERNAME"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Sources: cli.EnvVars("CHEMCART_PASSWORD"),
		},
	}

	return &cli.Command{
		Name:      "chemcart",
		Usage:     "chemical purchase assistant",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "assistant backend base URL",
				Value:   config.DefaultClientBaseURL,
				Sources: cli.EnvVars("CHEMCART_URL"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "write JSON debug logs",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "suppliers",
				Usage: "list the supported suppliers",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					for _, s := range utils.Suppliers {
						fmt.Fprintf(stdout, "%-8s %-20s %d-%d business days\n", s.Code, s.Name, s.MinDays, s.MaxDays)
					}
					return nil
				},
			},
			{
				Name:  "parse",
				Usage: "show how each line of a chemical list is read",
				Flags: textFlags,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					text, err := readList(cmd, stdin)
					if err != nil {
						return err
					}
					items := utils.ParseLines(text)
					if len(items) == 0 {
						return errors.New(widget.MsgEmptyList)
					}
					for i, item := range items {
						fmt.Fprintf(stdout, "%d. %s\n", i+1, utils.FormatChemicalDisplay(item))
					}
					return nil
				},
			},
			{
				Name:      "formula",
				Usage:     "append a formula with subscript digits to a line",
				ArgsUsage: "FORMULA",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "line to append to"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					formula := strings.TrimSpace(cmd.Args().First())
					if formula == "" {
						return fmt.Errorf("a formula is required, e.g. %s", strings.Join(utils.QuickPickFormulas, ", "))
					}
					text := cmd.String("text")
					out, _ := utils.InsertAt(text, len([]rune(text)), formula)
					fmt.Fprintln(stdout, out)
					return nil
				},
			},
			{
				Name:  "register",
				Usage: "create an account",
				Flags: credentialFlags,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client := widget.NewClient(cmd.String("url"), nil)
					if err := client.Register(ctx, cmd.String("username"), cmd.String("password")); err != nil {
						return err
					}
					fmt.Fprintf(stdout, "Registered %s\n", cmd.String("username"))
					return nil
				},
			},
			{
				Name:  "buy",
				Usage: "place a simulated purchase for a chemical list",
				Flags: append(append([]cli.Flag{
					&cli.StringFlag{
						Name:    "supplier",
						Aliases: []string{"s"},
						Value:   "sigma",
						Usage:   "supplier code, see `chemcart suppliers`",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "export the order summary as pdf, png, thumb or xlsx",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "export file path, defaults to order-summary-<order id>",
					},
					&cli.BoolFlag{
						Name:  "no-delay",
						Usage: "skip the staged progress delays",
					},
				}, textFlags...), credentialFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runBuy(ctx, cmd, stdin, stdout, stderr)
				},
			},
		},
	}
}

func runBuy(ctx context.Context, cmd *cli.Command, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := zap.NewNop()
	if cmd.Bool("verbose") {
		l, err := logging.NewLogger("debug")
		if err != nil {
			return err
		}
		logger = l
		defer func() { _ = logger.Sync() }()
	}

	text, err := readList(cmd, stdin)
	if err != nil {
		return err
	}

	client := widget.NewClient(cmd.String("url"), nil)
	if username := cmd.String("username"); username != "" {
		if err := client.Login(ctx, username, cmd.String("password")); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
	}

	flowOpts := []widget.FlowOption{widget.WithFlowLogger(logger)}
	if cmd.Bool("no-delay") {
		flowOpts = append(flowOpts, widget.WithTimings(widget.Timings{}))
	}
	submitter := &recordingSubmitter{next: client}
	flow := widget.NewPurchaseFlow(submitter, flowOpts...)

	ctrl := widget.NewController(client, flow,
		widget.WithNotifier(widget.NewWriterNotifier(stderr)),
		widget.WithMessageSink(widget.NewTextMessageSink(stdout)),
		widget.WithProgressListener(progressPrinter(stderr)),
		widget.WithLogger(logger),
	)
	ctrl.SetOpen(true)

	if err := ctrl.Submit(ctx, cmd.String("supplier"), text); err != nil {
		if errors.Is(err, widget.ErrNotAuthenticated) {
			return errors.New(widget.MsgAuthGate)
		}
		return err
	}

	format := cmd.String("export")
	if format == "" {
		return nil
	}
	order := submitter.Last()
	if order == nil {
		return errors.New("no order to export")
	}
	return exportSummary(ctx, client, cmd.String("supplier"), *order, format, cmd.String("output"), stdout)
}

func exportSummary(ctx context.Context, client *widget.Client, supplier string, order models.PurchaseOrderResult, format, output string, stdout io.Writer) error {
	data, contentType, err := client.ExportSummary(ctx, models.SummaryExportRequest{
		Supplier:     supplier,
		SupplierName: utils.SupplierName(supplier),
		Order:        order,
	}, format)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if output == "" {
		output = defaultExportName(order.OrderID, contentType)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(stdout, "Saved %s (%d bytes)\n", output, len(data))
	return nil
}

func defaultExportName(orderID, contentType string) string {
	if orderID == "" {
		orderID = "order"
	}
	switch contentType {
	case "application/pdf":
		return "order-summary-" + orderID + ".pdf"
	case "image/jpeg":
		return "order-summary-" + orderID + "-thumb.jpg"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "order-summary-" + orderID + ".xlsx"
	default:
		return "order-summary-" + orderID + ".png"
	}
}

// readList returns --text, or the contents of --file
func readList(cmd *cli.Command, stdin io.Reader) (string, error) {
	if text := cmd.String("text"); text != "" {
		return text, nil
	}
	switch path := cmd.String("file"); path {
	case "":
		return "", errors.New("either --text or --file is required")
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	}
}

func progressPrinter(w io.Writer) widget.ProgressFunc {
	return func(p models.ProgressState) {
		fmt.Fprintf(w, "[%d/%d] %3.0f%% %s (%s)\n", p.Step, p.TotalSteps, p.Percentage, p.Message, p.ETA)
	}
}
