package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"

	"firestige.xyz/wirecap/internal/codec/dnswire"
	"firestige.xyz/wirecap/internal/config"
	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/log"
	"firestige.xyz/wirecap/internal/metrics"
	"firestige.xyz/wirecap/internal/transport"
)

// Exchanger performs one request/response round trip.
type Exchanger interface {
	Exchange(ctx context.Context, req []byte) ([]byte, error)
}

var queryCmd = &cobra.Command{
	Use:   "query <domain> [type]",
	Short: "Send one name-resolution query over UDP",
	Long: `Build a single-question query for <domain>, send it to the configured
server and print the decoded response. The record type defaults to All.

Examples:
  wirecap query example.com
  wirecap query example.com AAAA --server 1.1.1.1:53
  wirecap query bücher.example MX --timeout 2s`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName := "All"
		if len(args) == 2 {
			typeName = args[1]
		}
		qtype, err := parseQueryType(typeName)
		if err != nil {
			return err
		}

		server := cfg.Query.Server
		if cmd.Flags().Changed("server") {
			server, _ = cmd.Flags().GetString("server")
		}
		timeout := cfg.Query.Timeout
		if cmd.Flags().Changed("timeout") {
			timeout, _ = cmd.Flags().GetDuration("timeout")
		}

		return runQuery(cmd.Context(), transport.NewUDP(server, timeout), args[0], qtype, queryOptions(cfg.Query), cmd.OutOrStdout())
	},
}

func init() {
	queryCmd.Flags().String("server", "", "server host:port (overrides query.server)")
	queryCmd.Flags().Duration("timeout", 5*time.Second, "exchange timeout (overrides query.timeout)")
}

// queryOptions maps the query config to builder options. A nil TxID leaves
// the random default in place; any set value, 0 included, is used as is.
func queryOptions(qc config.QueryConfig) []dnswire.QueryOption {
	opts := []dnswire.QueryOption{dnswire.WithRecursionDesired(qc.RecursionDesired)}
	if qc.TxID != nil {
		opts = append(opts, dnswire.WithID(uint16(*qc.TxID)))
	}
	return opts
}

// parseQueryType maps a record type name to its code. "All" means ANY.
func parseQueryType(name string) (uint16, error) {
	upper := strings.ToUpper(name)
	if upper == "ALL" {
		return dns.TypeANY, nil
	}
	if t, ok := dns.StringToType[upper]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown record type %q", name)
}

func runQuery(ctx context.Context, ex Exchanger, domain string, qtype uint16, opts []dnswire.QueryOption, out io.Writer) error {
	q, err := dnswire.BuildQuery(domain, qtype, opts...)
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	logger := log.GetLogger().WithFields(map[string]interface{}{
		"id":   q.Header.ID,
		"name": q.Name,
		"type": dns.TypeToString[qtype],
	})
	logger.Debug("sending query")

	start := time.Now()
	raw, err := ex.Exchange(ctx, q.Raw)
	if err != nil {
		metrics.QueryExchangesTotal.WithLabelValues(metrics.RcodeError).Inc()
		return fmt.Errorf("failed to exchange: %w", err)
	}
	metrics.QueryLatencySeconds.Observe(time.Since(start).Seconds())
	resp, err := dnswire.ParseResponse(raw)
	if err != nil {
		metrics.QueryExchangesTotal.WithLabelValues(metrics.RcodeError).Inc()
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if err := q.Validate(resp); err != nil {
		metrics.QueryExchangesTotal.WithLabelValues(metrics.RcodeError).Inc()
		return err
	}
	metrics.QueryExchangesTotal.WithLabelValues(resp.Header.Rcode.String()).Inc()
	logger.WithField("answers", len(resp.Answers)).Debug("response received")

	printResponse(out, resp)
	if resp.Header.Rcode != core.RcodeNoError {
		return fmt.Errorf("server answered %s", resp.Header.Rcode)
	}
	return nil
}

func printResponse(out io.Writer, resp *dnswire.Response) {
	h := resp.Header
	fmt.Fprintf(out, ";; id: %d, opcode: %s, status: %s\n", h.ID, h.Opcode, h.Rcode)
	fmt.Fprintf(out, ";; flags:%s; QUERY: %d, ANSWER: %d, AUTHORITY: %d, ADDITIONAL: %d\n",
		headerFlags(h), h.QDCount, h.ANCount, h.NSCount, h.ARCount)
	for _, q := range resp.Questions {
		fmt.Fprintf(out, ";%s.\t%s\t%s\n", q.Name, dns.ClassToString[q.Class], dns.TypeToString[q.Type])
	}
	for _, a := range resp.Answers {
		fmt.Fprintf(out, "%s.\t%d\t%s\t%s\t%s\n", a.Name, a.TTL, dns.ClassToString[a.Class], typeName(a.Type), answerData(a))
	}
}

func headerFlags(h core.QueryHeader) string {
	var sb strings.Builder
	for _, f := range []struct {
		set  bool
		name string
	}{
		{h.Type == core.MessageResponse, "qr"},
		{h.Authoritative, "aa"},
		{h.Truncated, "tc"},
		{h.RecursionDesired, "rd"},
		{h.RecursionAvailable, "ra"},
	} {
		if f.set {
			sb.WriteString(" " + f.name)
		}
	}
	return sb.String()
}

func typeName(t uint16) string {
	if s, ok := dns.TypeToString[t]; ok {
		return s
	}
	return fmt.Sprintf("TYPE%d", t)
}

func answerData(a dnswire.Answer) string {
	if addr, ok := a.Addr(); ok {
		return addr.String()
	}
	return fmt.Sprintf("\\# %d %x", len(a.Data), a.Data)
}
