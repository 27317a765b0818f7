package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
	natsprovider "github.com/feral-file/ff-sale-ledger/internal/providers/jetstream"
)

var cmdTail = &cobra.Command{
	Use:   "tail",
	Short: "Print ledger events as they are published to the stream",
	Args:  cobra.NoArgs,
	Run:   runTail,
}

var flagTail struct {
	FromSequence uint64
	Types        []string
}

func init() {
	cmdMain.AddCommand(cmdTail)
	cmdTail.Flags().Uint64Var(&flagTail.FromSequence, "from-stream-seq", 0, "Start at this stream sequence instead of new messages")
	cmdTail.Flags().StringSliceVarP(&flagTail.Types, "type", "t", nil, "Only show these event types, e.g. purchase,staked")
}

func runTail(cmd *cobra.Command, args []string) {
	cfg := natsprovider.Config{
		URL:            ctlConfig.NATS.URL,
		StreamName:     ctlConfig.NATS.StreamName,
		SubjectPrefix:  ctlConfig.NATS.SubjectPrefix,
		MaxReconnects:  ctlConfig.NATS.MaxReconnects,
		ReconnectWait:  ctlConfig.NATS.ReconnectWait,
		ConnectionName: ctlConfig.NATS.ConnectionName,
	}
	nc, js, err := natsprovider.Connect(cfg, adapter.NewNatsJetStream())
	checkf(err, "connect")
	defer nc.Close()

	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	check(tail(ctx, js, cfg, os.Stdout))
}

// tail consumes the stream with an ordered consumer until ctx is done
func tail(ctx context.Context, js adapter.JetStream, cfg natsprovider.Config, out io.Writer) error {
	consumerCfg := jetstream.OrderedConsumerConfig{
		FilterSubjects: tailSubjects(cfg.SubjectPrefix, flagTail.Types),
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	}
	if flagTail.FromSequence > 0 {
		consumerCfg.DeliverPolicy = jetstream.DeliverByStartSequencePolicy
		consumerCfg.OptStartSeq = flagTail.FromSequence
	}

	consumer, err := js.OrderedConsumer(ctx, cfg.StreamName, consumerCfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	cc, err := consumer.Consume(func(msg adapter.Message) {
		fmt.Fprintf(out, "%s %s\n", msg.Subject(), msg.Data())
	})
	if err != nil {
		return fmt.Errorf("failed to consume: %w", err)
	}
	defer cc.Stop()

	<-ctx.Done()
	return nil
}

func tailSubjects(prefix string, types []string) []string {
	if len(types) == 0 {
		return []string{prefix + ".>"}
	}
	subjects := make([]string, 0, len(types))
	for _, t := range types {
		subjects = append(subjects, natsprovider.Subject(prefix, domain.EventType(t)))
	}
	return subjects
}
