package hrapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"leavebot/internal/model"
)

// ErrEmployeeNotFound is returned when the employee endpoint answers with
// an empty record list for the requested identifier.
var ErrEmployeeNotFound = errors.New("employee not found")

// FetchCache memoizes fetch results keyed by the exact request parameter
// tuple. Implementations bound entries by a TTL. A nil cache disables
// memoization; cache failures are treated as misses.
type FetchCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Config carries the four HR endpoint URLs and the bearer token they share.
type Config struct {
	EmployeeEndpoint     string
	LeaveTypeEndpoint    string
	LeaveHistoryEndpoint string
	LeaveSummaryEndpoint string
	BearerToken          string
	MaxRetries           int
}

// Client talks to the HR backend. All fetches are idempotent reads; each is
// memoized by its parameter tuple and retried with exponential backoff on
// transport and server errors.
type Client struct {
	httpClient *http.Client
	cfg        Config
	cache      FetchCache
}

func NewClient(cfg Config, cache FetchCache) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cfg:        cfg,
		cache:      cache,
	}
}

// FetchEmployee returns the profile record for the given employee ID.
func (c *Client) FetchEmployee(ctx context.Context, empID int64) (*model.Employee, error) {
	key := "employee:" + strconv.FormatInt(empID, 10)
	var cached model.Employee
	if c.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	query := url.Values{"strEmp_ID_N": {strconv.FormatInt(empID, 10)}}
	raw, err := c.do(ctx, http.MethodPost, c.cfg.EmployeeEndpoint, query)
	if err != nil {
		return nil, fmt.Errorf("fetch employee %d failed: %w", empID, err)
	}

	var records []model.Employee
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse employee response failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("employee %d: %w", empID, ErrEmployeeNotFound)
	}
	c.cacheSet(ctx, key, records[0])
	return &records[0], nil
}

// FetchLeaveTypes returns the leave types available to the employee within
// the given company group.
func (c *Client) FetchLeaveTypes(ctx context.Context, empID, cgmID int64) ([]model.LeaveType, error) {
	key := fmt.Sprintf("leavetypes:%d:%d", empID, cgmID)
	var cached []model.LeaveType
	if c.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	query := url.Values{
		"Emp_ID_N": {strconv.FormatInt(empID, 10)},
		"Cgm_ID_N": {strconv.FormatInt(cgmID, 10)},
	}
	raw, err := c.do(ctx, http.MethodGet, c.cfg.LeaveTypeEndpoint, query)
	if err != nil {
		return nil, fmt.Errorf("fetch leave types for employee %d failed: %w", empID, err)
	}

	var types []model.LeaveType
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("parse leave types response failed: %w", err)
	}
	c.cacheSet(ctx, key, types)
	return types, nil
}

// FetchLeaveHistory returns the employee's leave applications, each
// enriched with its leave code joined from the leave-type list via the
// numeric leave-type identifier. Draft and cancelled statuses are excluded
// by the upstream filter.
func (c *Client) FetchLeaveHistory(ctx context.Context, empID int64, types []model.LeaveType) ([]model.LeaveRecord, error) {
	key := "history:" + strconv.FormatInt(empID, 10)
	var cached []model.LeaveRecord
	if c.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	filter := fmt.Sprintf("A.Emp_ID_N=%d AND A.Ela_Status_N NOT IN (0,6) ORDER BY Ela_RefferNo_V", empID)
	query := url.Values{"StrFilter": {filter}}
	raw, err := c.do(ctx, http.MethodPost, c.cfg.LeaveHistoryEndpoint, query)
	if err != nil {
		return nil, fmt.Errorf("fetch leave history for employee %d failed: %w", empID, err)
	}

	var records []model.LeaveRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse leave history response failed: %w", err)
	}

	codeByID := make(map[int64]string, len(types))
	descByID := make(map[int64]string, len(types))
	for _, lt := range types {
		if id, ok := lt.ID.Int64(); ok {
			codeByID[id] = lt.Code
			descByID[id] = lt.Description
		}
	}
	for i := range records {
		id, ok := records[i].LeaveTypeID.Int64()
		if !ok {
			continue
		}
		if records[i].Code == "" {
			records[i].Code = codeByID[id]
		}
		if records[i].Description == "" {
			records[i].Description = descByID[id]
		}
	}

	c.cacheSet(ctx, key, records)
	return records, nil
}

// FetchLeaveBalance returns the balance record for one
// (employee, policy-detail, date-range) combination, or nil when the
// backend has no data for it.
func (c *Client) FetchLeaveBalance(ctx context.Context, empID, policyID int64, fromDate, toDate string) (*model.LeaveBalance, error) {
	key := fmt.Sprintf("balance:%d:%d:%s:%s", empID, policyID, fromDate, toDate)
	var cached []model.LeaveBalance
	if c.cacheGet(ctx, key, &cached) {
		return firstBalance(cached), nil
	}

	strSQL := fmt.Sprintf("%d,%d,'%s','%s',0,0,1,0", empID, policyID, fromDate, toDate)
	query := url.Values{"StrSql": {strSQL}}
	raw, err := c.do(ctx, http.MethodPost, c.cfg.LeaveSummaryEndpoint, query)
	if err != nil {
		return nil, fmt.Errorf("fetch leave balance for employee %d policy %d failed: %w", empID, policyID, err)
	}

	var records []model.LeaveBalance
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse leave balance response failed: %w", err)
	}
	c.cacheSet(ctx, key, records)
	return firstBalance(records), nil
}

func firstBalance(records []model.LeaveBalance) *model.LeaveBalance {
	if len(records) == 0 {
		return nil
	}
	return &records[0]
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values) ([]byte, error) {
	fullURL := endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build hr request failed: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("hr request failed: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read hr response failed: %w", err)
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("hr response status %d: %s", resp.StatusCode, string(raw))
		}
		if resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("hr response status %d: %s", resp.StatusCode, string(raw)))
		}
		body = raw
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) cacheGet(ctx context.Context, key string, dest any) bool {
	if c.cache == nil {
		return false
	}
	hit, err := c.cache.Get(ctx, key, dest)
	if err != nil {
		return false
	}
	return hit
}

func (c *Client) cacheSet(ctx context.Context, key string, value any) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Set(ctx, key, value)
}
