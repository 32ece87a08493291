package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/slotbook/internal/domain/booking"
)

// Client talks to the booking backend's JSON API. It implements both
// booking.SlotSource and booking.BookingBackend.
type Client struct {
	hc      *http.Client
	baseURL string
	token   string
	log     *zap.Logger
}

type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  *zap.Logger
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		hc:      &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		log:     log,
	}
}

// StatusError is returned when the backend answers a read with a non-2xx status.
type StatusError struct {
	Op     string
	Status int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s failed: %s (status=%d)", e.Op, e.Msg, e.Status)
	}
	return fmt.Sprintf("%s failed (status=%d)", e.Op, e.Status)
}

type slotDTO struct {
	TimeUTC        string `json:"timeUTC"`
	CounselorID    string `json:"counselorId"`
	CounselorEmail string `json:"counselorEmail"`
}

type batchDTO struct {
	Date    string    `json:"date"`
	DateUTC string    `json:"dateUTC"`
	Slots   []slotDTO `json:"slots"`
}

// FetchAvailableSlots loads every slot batch. Batches whose date cannot be
// parsed are skipped.
func (c *Client) FetchAvailableSlots(ctx context.Context) ([]booking.RawSlotBatch, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/slots", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{Op: "fetch slots", Status: status, Msg: messageOf(body)}
	}

	var dtos []batchDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("decode slots: %w", err)
	}

	out := make([]booking.RawSlotBatch, 0, len(dtos))
	for _, d := range dtos {
		day, ok := parseBatchDate(d.DateUTC)
		if !ok {
			day, ok = parseBatchDate(d.Date)
		}
		if !ok {
			c.log.Warn("skipping slot batch with unparseable date",
				zap.String("date", d.Date), zap.String("dateUTC", d.DateUTC))
			continue
		}
		b := booking.RawSlotBatch{UTCDate: day}
		for _, s := range d.Slots {
			b.Slots = append(b.Slots, booking.RawSlot{
				TimeRangeUTC:   s.TimeUTC,
				CounselorID:    s.CounselorID,
				CounselorEmail: s.CounselorEmail,
			})
		}
		out = append(out, b)
	}
	return out, nil
}

// SubmitBooking posts req and returns the raw response body whatever the
// status. Only transport faults produce an error.
func (c *Client) SubmitBooking(ctx context.Context, req booking.BookingRequest) ([]byte, error) {
	jb, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	status, body, err := c.do(ctx, http.MethodPost, "/bookings", jb)
	if err != nil {
		return nil, err
	}
	c.log.Debug("booking submitted", zap.Int("status", status), zap.Int("bytes", len(body)))
	return body, nil
}

// Ping checks the backend is reachable by listing slots.
func (c *Client) Ping(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodGet, "/slots", nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return &StatusError{Op: "backend ping", Status: status, Msg: messageOf(body)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("accept", "application/json")
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("authorization", "Bearer "+c.token)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	return res.StatusCode, b, nil
}

func parseBatchDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	if t, err := time.Parse(booking.DateLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func messageOf(body []byte) string {
	var r struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &r)
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}
