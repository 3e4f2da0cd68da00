package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	relay "github.com/wesleyorama2/relay/http"
	"github.com/wesleyorama2/relay/internal/jsonpath"
	"github.com/wesleyorama2/relay/internal/output"
	"github.com/wesleyorama2/relay/plugins/logging"
	"github.com/wesleyorama2/relay/plugins/metrics"
	"github.com/wesleyorama2/relay/plugins/ratelimit"
	"github.com/wesleyorama2/relay/plugins/requestid"
	"github.com/wesleyorama2/relay/plugins/schema"
	"github.com/wesleyorama2/relay/plugins/signer"
)

// reportedError marks a failure already written to the output.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// buildClient creates the instance and installs the plugins selected by
// flags and config. Request plugins run in this order: request id, rate
// limit, signer, logging; so the signature covers the final request and
// the log shows it.
func buildClient(o *options, errOut io.Writer, schemaName string, hooks ...relay.AfterHook) (*relay.Instance, error) {
	var clientOpts []relay.Option
	if o.insecure {
		clientOpts = append(clientOpts, relay.WithInsecureSkipVerify())
	}

	var log *logging.Logger
	if o.debug {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: errOut, NoColor: o.noColor}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
		log = logging.New(logger, logging.WithCurl())
		clientOpts = append(clientOpts, relay.WithLogger(logger), relay.WithAfterHook(log.Hook()))
	}
	for _, hook := range hooks {
		clientOpts = append(clientOpts, relay.WithAfterHook(hook))
	}

	client := relay.Create(o.defaults, clientOpts...)

	if o.requestID {
		client.Use(requestid.Plugin(""))
	}

	if o.rate > 0 {
		client.Use(ratelimit.Plugin(ratelimit.New(o.rate, 1)))
	} else if o.file != nil && o.file.RateLimit != nil {
		client.Use(ratelimit.Plugin(ratelimit.New(o.file.RateLimit.RPS, o.file.RateLimit.Burst)))
	}

	if o.file != nil && o.file.Signing != nil {
		key := o.file.Signing.Key()
		if key == "" {
			return nil, fmt.Errorf("signing secret is empty")
		}
		client.Use(signer.Plugin(signer.NewHMAC([]byte(key)), signer.WithHeader(o.file.Signing.Header)))
	}

	if log != nil {
		client.Use(log.Plugin())
	}

	validator, err := o.loadSchema(schemaName)
	if err != nil {
		return nil, err
	}
	if validator != nil {
		client.Use(schema.Plugin(validator))
	}

	return client, nil
}

func (o *options) loadSchema(name string) (*schema.Validator, error) {
	var doc []byte
	switch {
	case o.schemaFile != "":
		data, err := os.ReadFile(o.schemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}
		doc = data
	case name != "" && o.file != nil:
		data, err := o.file.Schema(name)
		if err != nil {
			return nil, err
		}
		doc = data
	default:
		return nil, nil
	}
	return schema.Compile(doc)
}

// execute sends call once, or --repeat times across --concurrency workers,
// and prints the result.
func execute(cmd *cobra.Command, o *options, call *relay.RequestConfig, schemaName string) error {
	extract, err := parseExtract(o.extract)
	if err != nil {
		return err
	}

	var recorder *metrics.Recorder
	var hooks []relay.AfterHook
	if o.repeat > 1 {
		recorder = metrics.NewRecorder()
		hooks = append(hooks, recorder.Hook())
	}

	client, err := buildClient(o, cmd.ErrOrStderr(), schemaName, hooks...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	formatter := output.GetFormatter(o.format, o.verbose, o.noColor)

	if recorder != nil {
		runRepeated(ctx, client, call, o.repeat, o.concurrency)
		summary := recorder.Summary()
		fmt.Fprint(out, formatter.FormatSummary(summary))
		if summary.Failed > 0 {
			return &reportedError{err: fmt.Errorf("%d of %d requests failed", summary.Failed, summary.Total)}
		}
		return nil
	}

	if o.format == output.FormatText || o.verbose {
		fmt.Fprint(out, formatter.FormatRequest(relay.Merge(client.Defaults(), call)))
	}

	resp, err := client.Request(ctx, call)
	if err != nil {
		fmt.Fprint(out, formatter.FormatError(err))
		return &reportedError{err: err}
	}
	fmt.Fprint(out, formatter.FormatResponse(resp))

	if extract != nil {
		values, err := jsonpath.ExtractAll(resp.Raw, extract)
		fmt.Fprint(out, formatter.FormatExtracted(values))
		if err != nil {
			return err
		}
	}
	return nil
}

func runRepeated(ctx context.Context, client *relay.Instance, call *relay.RequestConfig, repeat, concurrency int) {
	if concurrency > repeat {
		concurrency = repeat
	}

	jobs := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				// outcomes are collected by the recorder hook
				_, _ = client.Request(ctx, call)
			}
		}()
	}

send:
	for i := 0; i < repeat; i++ {
		select {
		case jobs <- struct{}{}:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)
	wg.Wait()
}
