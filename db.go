package surreal

import (
	"context"
	"fmt"

	"github.com/romaninsh/surreal.go/pkg/connection"
	"github.com/romaninsh/surreal.go/pkg/models"
)

// Use switches the session to the given namespace and database. The
// target is remembered and replayed on reconnect.
func (c *Client) Use(ctx context.Context, namespace, database string) error {
	if _, err := c.con().Send(ctx, connection.MethodUse, namespace, database); err != nil {
		return err
	}
	c.sess.SetTarget(namespace, database)
	return nil
}

// Info returns the record of the currently authenticated user.
func (c *Client) Info(ctx context.Context) (*models.AnyValue, error) {
	return Send[models.AnyValue](ctx, c, connection.MethodInfo)
}

// Version returns the server version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	v, err := Send[string](ctx, c, connection.MethodVersion)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// Ping checks that the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.con().Send(ctx, connection.MethodPing)
	return err
}

// SignUp registers a new record-access user and signs the session in
// with the returned token.
func (c *Client) SignUp(ctx context.Context, auth *Auth) (string, error) {
	return c.authCall(ctx, connection.MethodSignUp, auth)
}

// SignIn authenticates with the given credentials and stores the
// returned token in the session for replay on reconnect.
func (c *Client) SignIn(ctx context.Context, auth *Auth) (string, error) {
	return c.authCall(ctx, connection.MethodSignIn, auth)
}

func (c *Client) authCall(ctx context.Context, method string, auth *Auth) (string, error) {
	vars, err := auth.vars()
	if err != nil {
		return "", err
	}

	token, err := Send[string](ctx, c, method, vars)
	if err != nil {
		return "", err
	}

	if token != nil && *token != "" {
		c.sess.SetToken(*token)
	}
	c.sess.SetScope(auth.Scope)
	c.sess.SetAccess(auth.Access)

	if token == nil {
		return "", nil
	}
	return *token, nil
}

// Authenticate resumes a session from an existing token.
func (c *Client) Authenticate(ctx context.Context, token string) error {
	if _, err := c.con().Send(ctx, connection.MethodAuthenticate, token); err != nil {
		return err
	}
	c.sess.SetToken(token)
	return nil
}

// Invalidate signs the session out and drops the stored token.
func (c *Client) Invalidate(ctx context.Context) error {
	if _, err := c.con().Send(ctx, connection.MethodInvalidate); err != nil {
		return err
	}
	c.sess.ClearAuth()
	return nil
}

// Let binds a parameter for subsequent queries. The binding is
// remembered and replayed on reconnect.
func (c *Client) Let(ctx context.Context, key string, value any) error {
	if _, err := c.con().Send(ctx, connection.MethodLet, key, value); err != nil {
		return err
	}
	c.sess.SetParam(key, value)
	return nil
}

// Unset removes a parameter binding.
func (c *Client) Unset(ctx context.Context, key string) error {
	if _, err := c.con().Send(ctx, connection.MethodUnset, key); err != nil {
		return err
	}
	c.sess.UnsetParam(key)
	return nil
}

// Query executes one or more SurrealQL statements and returns one result
// per statement. A statement that failed has its Status set to "ERR";
// Query itself errors only on transport or protocol failure.
func (c *Client) Query(ctx context.Context, sql string, vars map[string]any) ([]QueryResult, error) {
	res, err := Send[[]QueryResult](ctx, c, connection.MethodQuery, sql, vars)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return *res, nil
}

// Select reads a whole table or a single record. what is a table name, a
// models.Table or a models.RecordID.
func (c *Client) Select(ctx context.Context, what any) (*models.AnyValue, error) {
	return Send[models.AnyValue](ctx, c, connection.MethodSelect, what)
}

// Create creates a record with the given content.
func (c *Client) Create(ctx context.Context, what any, data any) (*models.AnyValue, error) {
	return Send[models.AnyValue](ctx, c, connection.MethodCreate, what, data)
}

// Insert inserts one or more records into a table.
func (c *Client) Insert(ctx context.Context, table any, data any) (*models.AnyValue, error) {
	return Send[models.AnyValue](ctx, c, connection.MethodInsert, table, data)
}

// Update replaces the content of a table or record.
func (c *Client) Update(ctx context.Context, what any, data any) (*models.AnyValue, error) {
	return Send[models.AnyValue](ctx, c, connection.MethodUpdate, what, data)
}

// Upsert replaces the content of a record, creating it if absent.
func (c *Client) Upsert(ctx context.Context, what any, data any) (*models.AnyValue, error) {
	return Send[models.AnyValue](ctx, c, connection.MethodUpsert, what, data)
}

// Merge merges data into a table or record.
func (c *Client) Merge(ctx context.Context, what any, data any) (*models.AnyValue, error) {
	return Send[models.AnyValue](ctx, c, connection.MethodMerge, what, data)
}

// Patch applies JSON Patch operations to a table or record.
func (c *Client) Patch(ctx context.Context, what any, patches []PatchData) (*models.AnyValue, error) {
	return Send[models.AnyValue](ctx, c, connection.MethodPatch, what, patches)
}

// Delete removes a table's records or a single record.
func (c *Client) Delete(ctx context.Context, what any) (*models.AnyValue, error) {
	return Send[models.AnyValue](ctx, c, connection.MethodDelete, what)
}

// Relate creates a graph edge of the given relation between two records.
func (c *Client) Relate(ctx context.Context, in models.RecordID, relation models.Table, out models.RecordID, data map[string]any) (*models.AnyValue, error) {
	return Send[models.AnyValue](ctx, c, connection.MethodRelate, in, relation, out, data)
}

// Run invokes a stored server-side function with the given arguments.
func (c *Client) Run(ctx context.Context, fn string, args ...any) (*models.AnyValue, error) {
	params := []any{fn}
	if len(args) > 0 {
		params = append(params, args)
	}
	return Send[models.AnyValue](ctx, c, connection.MethodRun, params...)
}

// Live starts a live query on a table and returns its id. Events arrive
// on the channel obtained from LiveNotifications. diff selects JSON
// Patch payloads instead of full records.
func (c *Client) Live(ctx context.Context, table models.Table, diff bool) (*models.UUID, error) {
	id, err := Send[models.UUID](ctx, c, connection.MethodLive, table, diff)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("live did not return a query id")
	}
	return id, nil
}

// Kill stops a live query.
func (c *Client) Kill(ctx context.Context, liveQueryID string) error {
	_, err := c.con().Send(ctx, connection.MethodKill, liveQueryID)
	return err
}
