package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asheeshkh/mausam/internal/client"
	"github.com/asheeshkh/mausam/internal/input"
	"github.com/asheeshkh/mausam/internal/models"
	"github.com/asheeshkh/mausam/internal/observability"
	"github.com/asheeshkh/mausam/internal/present"
)

// Fetcher is the service-layer dependency of the session loop.
type Fetcher interface {
	Get(ctx context.Context, q input.Query) (models.Report, error)
}

// Session runs the interactive prompt loop: read a line, classify, fetch,
// render, repeat until quit/exit or end of input. One query at a time,
// blocking on each fetch.
type Session struct {
	fetcher Fetcher
	in      io.Reader
	out     io.Writer
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a session reading from in and writing to out.
func New(fetcher Fetcher, in io.Reader, out io.Writer, logger *zap.Logger) *Session {
	return &Session{
		fetcher: fetcher,
		in:      in,
		out:     out,
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes the loop until the user quits or input ends. Validation and
// upstream errors print a message and re-prompt; none of them end the session.
func (s *Session) Run(ctx context.Context) error {
	s.welcome()

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "\nEnter city name or pincode: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			// EOF (Ctrl+D) ends the session like quit.
			fmt.Fprintln(s.out)
			return nil
		}

		q, err := input.Classify(scanner.Text())
		if err != nil {
			fmt.Fprintln(s.out, "Invalid input. Please enter a valid Indian city name or 6-digit pincode.")
			continue
		}

		switch q.Kind {
		case input.KindQuit:
			fmt.Fprintln(s.out, "Thank you for using mausam!")
			return nil
		case input.KindStats:
			fmt.Fprintln(s.out, observability.Snapshot())
			continue
		}

		s.handleQuery(ctx, q)
	}
}

func (s *Session) handleQuery(ctx context.Context, q input.Query) {
	corrID := uuid.NewString()
	qctx := client.WithCorrelationID(ctx, corrID)
	start := time.Now()

	fmt.Fprintf(s.out, "Fetching weather for %s...\n", q.Value)

	report, err := s.fetcher.Get(qctx, q)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("query failed",
				zap.String("correlation_id", corrID),
				zap.String("query", q.Key()),
				zap.String("category", string(client.CategorizeError(err))),
				zap.Error(err))
		}
		fmt.Fprintln(s.out, client.UserMessage(err))
		return
	}

	if s.logger != nil {
		s.logger.Debug("query served",
			zap.String("correlation_id", corrID),
			zap.String("query", q.Key()),
			zap.Bool("cached", report.Cached),
			zap.Duration("duration", time.Since(start)))
	}

	fmt.Fprintln(s.out)
	fmt.Fprint(s.out, present.Render(report, s.now()))
	fmt.Fprintln(s.out, present.Divider())
}

func (s *Session) welcome() {
	fmt.Fprintln(s.out, "mausam — weather for India, right in your terminal")
	fmt.Fprintln(s.out, present.Divider())
	fmt.Fprintln(s.out, "You can enter:")
	fmt.Fprintln(s.out, "  - city names: Delhi, Mumbai, Bangalore, ...")
	fmt.Fprintln(s.out, "  - pincodes: 110001, 400001, ...")
	fmt.Fprintln(s.out, "  - 'stats' for session counters, 'quit' or 'exit' to stop")
	fmt.Fprintln(s.out, present.Divider())
}
