package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/traveldelay/config"
	"github.com/kilianp07/traveldelay/core/model"
	"github.com/kilianp07/traveldelay/core/prediction"
	_ "github.com/kilianp07/traveldelay/infra/artifact"
)

var inputPath string

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the delay of one trip read from a JSON file or stdin",
	RunE:  predictOnce,
}

func init() {
	predictCmd.Flags().StringVarP(&inputPath, "input", "i", "-", "request file, - for stdin")
	rootCmd.AddCommand(predictCmd)
}

func predictOnce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	engine, err := prediction.BuildEngine(ctx, cfg.Estimator)
	if err != nil {
		return fmt.Errorf("estimator: %w", err)
	}

	var in io.Reader = cmd.InOrStdin()
	if inputPath != "" && inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	return runPredict(ctx, engine, in, cmd.OutOrStdout())
}

// runPredict writes the result, or the error body, as JSON to out. A failed
// prediction is also returned as an error so the exit status is non-zero.
func runPredict(ctx context.Context, engine *prediction.Engine, in io.Reader, out io.Writer) error {
	body, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	res, err := engine.PredictJSON(ctx, body)
	if err != nil {
		_ = enc.Encode(model.ErrorResponse{Error: err.Error(), MissingFields: prediction.MissingFields(err)})
		return err
	}
	return enc.Encode(res)
}
