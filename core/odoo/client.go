// Package odoo is a minimal XML-RPC client for Odoo-style ERP back ends.
// It covers authentication plus the generic execute_kw entry point used by
// the reporting side of the application, and adapts credential checking to
// the authsession.Validator contract.
package odoo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kolo/xmlrpc"
)

var (
	// ErrAuthenticationFailed is returned when the ERP rejects the
	// database/username/password combination.
	ErrAuthenticationFailed = errors.New("odoo authentication failed")
	// ErrNotConnected is returned when a model operation is attempted
	// before Connect succeeded.
	ErrNotConnected = errors.New("not connected to odoo")
)

// Client talks to one Odoo instance on behalf of one user. It is not safe
// for concurrent use; create one per operation or guard externally.
type Client struct {
	url      string
	database string
	username string
	password string

	uid    int64
	object *xmlrpc.Client
}

// NewClient creates a client for the given instance and credentials.
// No network I/O happens until Connect.
func NewClient(url, database, username, password string) *Client {
	return &Client{
		url:      strings.TrimRight(url, "/"),
		database: database,
		username: username,
		password: password,
	}
}

// UID returns the authenticated user id, or zero before Connect.
func (c *Client) UID() int64 {
	return c.uid
}

// Connect authenticates against the common endpoint and prepares the
// object endpoint for model operations. Rejected credentials yield
// ErrAuthenticationFailed; any other error is a transport fault.
func (c *Client) Connect(ctx context.Context) error {
	common, err := xmlrpc.NewClient(c.url+"/xmlrpc/2/common", nil)
	if err != nil {
		return fmt.Errorf("create common endpoint client: %w", err)
	}
	defer common.Close()

	var reply any
	if err := common.Call("authenticate", []any{c.database, c.username, c.password, map[string]any{}}, &reply); err != nil {
		return fmt.Errorf("authenticate call: %w", err)
	}

	// Odoo returns the integer uid on success and boolean false on
	// rejection.
	uid, ok := asInt64(reply)
	if !ok || uid <= 0 {
		return ErrAuthenticationFailed
	}
	c.uid = uid

	object, err := xmlrpc.NewClient(c.url+"/xmlrpc/2/object", nil)
	if err != nil {
		return fmt.Errorf("create object endpoint client: %w", err)
	}
	c.object = object

	return nil
}

// Close releases the object endpoint connection.
func (c *Client) Close() error {
	if c.object == nil {
		return nil
	}
	err := c.object.Close()
	c.object = nil
	return err
}

// ExecuteKw invokes a model method through the generic execute_kw entry
// point. args are positional, kwargs keyword arguments; a nil kwargs is
// sent as an empty map.
func (c *Client) ExecuteKw(ctx context.Context, model, method string, args []any, kwargs map[string]any) (any, error) {
	if c.object == nil || c.uid == 0 {
		return nil, ErrNotConnected
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	var reply any
	err := c.object.Call("execute_kw", []any{
		c.database, c.uid, c.password, model, method, args, kwargs,
	}, &reply)
	if err != nil {
		return nil, fmt.Errorf("execute_kw %s.%s: %w", model, method, err)
	}
	return reply, nil
}

// SearchRead searches a model and reads the given fields of the matches in
// a single round trip.
func (c *Client) SearchRead(ctx context.Context, model string, domain []any, fields []string, limit, offset int) ([]map[string]any, error) {
	kwargs := map[string]any{"offset": offset}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}

	reply, err := c.ExecuteKw(ctx, model, "search_read", []any{normalizeDomain(domain)}, kwargs)
	if err != nil {
		return nil, err
	}
	return asRecords(reply)
}

// Read reads the given fields of specific records.
func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error) {
	kwargs := map[string]any{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}

	reply, err := c.ExecuteKw(ctx, model, "read", []any{ids}, kwargs)
	if err != nil {
		return nil, err
	}
	return asRecords(reply)
}

// SearchCount counts records matching the domain.
func (c *Client) SearchCount(ctx context.Context, model string, domain []any) (int64, error) {
	reply, err := c.ExecuteKw(ctx, model, "search_count", []any{normalizeDomain(domain)}, nil)
	if err != nil {
		return 0, err
	}

	count, ok := asInt64(reply)
	if !ok {
		return 0, fmt.Errorf("unexpected search_count reply type %T", reply)
	}
	return count, nil
}

// TestConnection authenticates and reads the user's display name from
// res.users. The returned map carries at least "uid"; "name" and "login"
// are present when readable.
func (c *Client) TestConnection(ctx context.Context) (map[string]any, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	defer c.Close()

	info := map[string]any{"uid": c.uid}

	records, err := c.Read(ctx, "res.users", []int64{c.uid}, []string{"name", "login"})
	if err != nil || len(records) == 0 {
		// Authentication already succeeded; a failed profile read only
		// costs the welcome message.
		return info, nil
	}
	for key, value := range records[0] {
		info[key] = value
	}

	return info, nil
}

func normalizeDomain(domain []any) []any {
	if domain == nil {
		return []any{}
	}
	return domain
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}

func asRecords(reply any) ([]map[string]any, error) {
	raw, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected reply type %T", reply)
	}

	records := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected record type %T", item)
		}
		records = append(records, record)
	}
	return records, nil
}
