package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/model"
)

// followPollInterval re-checks a followed file even without a change event,
// for filesystems that do not deliver them.
const followPollInterval = 2 * time.Second

// JSONLSource reads one status object per line, in the shape of the Twitter
// v1.1 REST and streaming APIs. Lines that do not decode are logged and
// skipped.
type JSONLSource struct {
	path   string
	follow bool
	stdin  io.Reader
	logger *zap.SugaredLogger
}

// JSONLOption configures a JSONLSource.
type JSONLOption func(*JSONLSource)

// WithFollow keeps reading a file as it grows, like tail -f. It has no
// effect on standard input.
func WithFollow(follow bool) JSONLOption {
	return func(s *JSONLSource) { s.follow = follow }
}

// WithStdin replaces os.Stdin for the "-" path.
func WithStdin(r io.Reader) JSONLOption {
	return func(s *JSONLSource) { s.stdin = r }
}

// NewJSONLSource reads from path, or from standard input when path is "-"
// or empty.
func NewJSONLSource(path string, log *zap.SugaredLogger, opts ...JSONLOption) *JSONLSource {
	s := &JSONLSource{path: path, stdin: os.Stdin, logger: logger.OrNop(log)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *JSONLSource) fromStdin() bool {
	return s.path == "" || s.path == "-"
}

// Run implements Source.
func (s *JSONLSource) Run(ctx context.Context, emit func(*model.Message) error) error {
	var r io.Reader = s.stdin
	var watcher *fsnotify.Watcher
	follow := s.follow && !s.fromStdin()

	if !s.fromStdin() {
		f, err := os.Open(s.path)
		if err != nil {
			return errors.Wrapf(err, "failed to open %s", s.path)
		}
		defer f.Close()
		r = f

		if follow {
			watcher, err = fsnotify.NewWatcher()
			if err != nil {
				return errors.Wrap(err, "failed to create file watcher")
			}
			defer watcher.Close()
			if err := watcher.Add(s.path); err != nil {
				return errors.Wrapf(err, "failed to watch %s", s.path)
			}
			s.logger.Infow("Following message file", logger.FieldPath, s.path)
		}
	}

	br := bufio.NewReader(r)
	var line []byte
	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, err := br.ReadBytes('\n')
		line = append(line, chunk...)
		if err != nil && !errors.Is(err, io.EOF) {
			return errors.Wrapf(err, "failed to read %s", s.describePath())
		}
		complete := err == nil
		if !complete && !follow {
			// Last line without a trailing newline.
			complete = len(bytes.TrimSpace(line)) > 0
		}
		if complete {
			lineNo++
			if msg, ok := s.decodeLine(line, lineNo); ok {
				if err := emit(msg); err != nil {
					return err
				}
			}
			line = line[:0]
			continue
		}
		if !follow {
			return nil
		}
		if err := waitForGrowth(ctx, watcher); err != nil {
			return err
		}
	}
}

func (s *JSONLSource) describePath() string {
	if s.fromStdin() {
		return "standard input"
	}
	return s.path
}

func (s *JSONLSource) decodeLine(line []byte, lineNo int) (*model.Message, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, false
	}
	msg, err := DecodeStatus(line)
	if err != nil {
		s.logger.Warnw("Skipping malformed line",
			logger.FieldSource, s.describePath(),
			"line", lineNo,
			logger.FieldError, err)
		return nil, false
	}
	return msg, true
}

func waitForGrowth(ctx context.Context, w *fsnotify.Watcher) error {
	timer := time.NewTimer(followPollInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return errors.Wrap(errors.ErrClosed, "file watcher closed")
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errors.Wrap(errors.ErrClosed, "file watcher closed")
			}
			return errors.Wrap(err, "file watcher failed")
		}
	}
}

// status is the subset of a Twitter status object that is mapped to a
// Message.
type status struct {
	ID                   json.Number  `json:"id"`
	IDStr                string       `json:"id_str"`
	Text                 string       `json:"text"`
	FullText             string       `json:"full_text"`
	CreatedAt            string       `json:"created_at"`
	User                 *statusUser  `json:"user"`
	Coordinates          *coordinates `json:"coordinates"`
	Place                *statusPlace `json:"place"`
	InReplyToStatusIDStr string       `json:"in_reply_to_status_id_str"`
	InReplyToScreenName  string       `json:"in_reply_to_screen_name"`
	InReplyToStatus      *status      `json:"in_reply_to_status"`
	RetweetedStatus      *status      `json:"retweeted_status"`
}

type statusUser struct {
	ScreenName string `json:"screen_name"`
}

// coordinates is GeoJSON: longitude first.
type coordinates struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type statusPlace struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	PlaceType   string `json:"place_type"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// DecodeStatus maps one JSON status object to a Message, including any
// embedded reply-parent or retweet-source.
func DecodeStatus(data []byte) (*model.Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var st status
	if err := dec.Decode(&st); err != nil {
		return nil, errors.Wrap(err, "failed to decode status")
	}
	return st.message()
}

func (st *status) message() (*model.Message, error) {
	id := st.IDStr
	if id == "" {
		id = st.ID.String()
	}
	if id == "" {
		return nil, errors.NewInvalidRequestError("status has no id")
	}
	msg := &model.Message{ID: id, Text: st.Text}
	if st.FullText != "" {
		msg.Text = st.FullText
	}

	if st.CreatedAt != "" {
		created, err := parseCreatedAt(st.CreatedAt)
		if err != nil {
			return nil, errors.WithDetailf(err, "Message ID: %s", id)
		}
		msg.CreatedAt = created
	}
	if st.User != nil && st.User.ScreenName != "" {
		msg.Author = &model.Account{Handle: st.User.ScreenName}
	}
	if c := st.Coordinates; c != nil && len(c.Coordinates) == 2 {
		msg.Geo = &model.Point{Long: c.Coordinates[0], Lat: c.Coordinates[1]}
	}
	if p := st.Place; p != nil && p.ID != "" {
		msg.Place = &model.Place{
			ID:          p.ID,
			Name:        p.Name,
			FullName:    p.FullName,
			Type:        model.PlaceType(p.PlaceType),
			Country:     p.Country,
			CountryCode: p.CountryCode,
		}
	}

	switch {
	case st.InReplyToStatus != nil:
		parent, err := st.InReplyToStatus.message()
		if err != nil {
			return nil, errors.Wrap(err, "reply parent")
		}
		msg.InReplyTo = parent
	case st.InReplyToStatusIDStr != "":
		parent := &model.Message{ID: st.InReplyToStatusIDStr}
		if st.InReplyToScreenName != "" {
			parent.Author = &model.Account{Handle: st.InReplyToScreenName}
		}
		msg.InReplyTo = parent
	}
	if st.RetweetedStatus != nil {
		source, err := st.RetweetedStatus.message()
		if err != nil {
			return nil, errors.Wrap(err, "retweet source")
		}
		msg.RetweetOf = source
	}
	return msg, nil
}

// parseCreatedAt accepts the Twitter timestamp layout and RFC 3339.
func parseCreatedAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RubyDate, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, errors.Newf("unrecognised created_at %q", s)
}
