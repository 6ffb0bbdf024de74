package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-quoteform"
	"github.com/goliatone/go-quoteform/internal/config"
	"github.com/goliatone/go-quoteform/internal/logging"
	"github.com/goliatone/go-quoteform/pkg/postal"
	"github.com/goliatone/go-quoteform/pkg/quote"
	"github.com/goliatone/go-quoteform/pkg/renderers/tui"
)

func main() {
	cfg := config.Load()

	referral := flag.String("ref", "", "referral code recorded with the quote")
	lookupURL := flag.String("lookup-url", cfg.LookupURL, "postal code service base URL")
	confirm := flag.Bool("confirm", true, "ask before sending the summary")
	offline := flag.Bool("offline", false, "skip postal code lookups")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel)

	options := []quote.Option{
		quote.WithReferral(*referral),
		quote.WithMessenger(quote.Messenger{Destination: cfg.WhatsAppNumber}),
		quote.WithLogger(logger.Logger),
		quote.WithLookupTimeout(cfg.LookupTimeout),
		quote.WithNavigator(quote.NavigatorFunc(func(_ context.Context, target string) error {
			_, err := fmt.Fprintf(os.Stdout, "\nAbra este link para enviar a mensagem:\n%s\n", target)
			return err
		})),
	}
	if !*offline {
		options = append(options, quote.WithLookup(postal.NewClient(postal.WithBaseURL(*lookupURL))))
	}

	ctrl := quoteform.NewController(options...)
	defer ctrl.Close()

	runner := tui.New(tui.WithConfirmSubmit(*confirm))
	if _, err := runner.Run(ctx, ctrl); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Cotação cancelada.")
			os.Exit(1)
		}
		log.Fatalf("quote flow failed: %v", err)
	}
}
