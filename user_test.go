package baas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUser(t *testing.T) {
	s, rec := newHTTPTestService(t, 200,
		`{"_id":"u1","username":"foo","email":"foo@example.com","createdAt":"2024-01-01T00:00:00.000Z"}`)

	u, err := RegisterUser(context.Background(), s, &User{
		Username: "foo",
		Email:    "foo@example.com",
	}, "passw0rd")
	require.NoError(t, err)

	assert.Equal(t, "POST", rec.Method)
	assert.Equal(t, "/1/tenant1/users", rec.Path)
	assert.JSONEq(t,
		`{"username":"foo","email":"foo@example.com","password":"passw0rd"}`,
		string(rec.Body))
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "foo", u.Username)
}

func TestLogInInstallsSessionToken(t *testing.T) {
	s, rec := newHTTPTestService(t, 200,
		`{"_id":"u1","username":"foo","sessionToken":"tok123","expire":1700000000}`)

	u, err := LogIn(context.Background(), s, LoginParam{Username: "foo", Password: "passw0rd"})
	require.NoError(t, err)
	assert.Equal(t, "POST", rec.Method)
	assert.Equal(t, "/1/tenant1/login", rec.Path)
	assert.Equal(t, "u1", u.ID)

	assert.Equal(t, "tok123", s.SessionToken())
	assert.Equal(t, int64(1700000000), s.SessionExpire())

	// Every later request carries the installed token.
	_, err = CurrentUser(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "tok123", rec.Header.Get(HeaderSessionToken))
	assert.Equal(t, "/1/tenant1/users/current", rec.Path)
}

func TestLogInRequiresIdentity(t *testing.T) {
	s, rec := newHTTPTestService(t, 200, `{}`)

	_, err := LogIn(context.Background(), s, LoginParam{Password: "passw0rd"})
	require.Error(t, err)
	assert.True(t, ErrConfiguration.Has(err))
	assert.Empty(t, rec.Method, "no request may be sent without an identity")
}

func TestLogInFailureLeavesTokenUnset(t *testing.T) {
	s, _ := newHTTPTestService(t, 401, `{"error":"unauthorized"}`)

	_, err := LogIn(context.Background(), s, LoginParam{Username: "foo", Password: "wrong"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Empty(t, s.SessionToken())
}

func TestLogOutClearsSessionToken(t *testing.T) {
	s, rec := newHTTPTestService(t, 200, `{}`)
	s.SetSessionToken("tok123", 1700000000)

	require.NoError(t, LogOut(context.Background(), s))
	assert.Equal(t, "DELETE", rec.Method)
	assert.Equal(t, "/1/tenant1/login", rec.Path)
	assert.Empty(t, s.SessionToken())
	assert.Zero(t, s.SessionExpire())
}

func TestQueryUsers(t *testing.T) {
	s, rec := newHTTPTestService(t, 200,
		`{"results":[{"_id":"u1","username":"foo"},{"_id":"u2","username":"bar"}]}`)

	users, err := QueryUsers(context.Background(), s, "foo", "")
	require.NoError(t, err)
	assert.Equal(t, "foo", rec.Query["username"])
	assert.NotContains(t, rec.Query, "email")
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[1].ID)
}

func TestUserUpdateAndDelete(t *testing.T) {
	s, rec := newHTTPTestService(t, 200, `{"_id":"u1","username":"renamed"}`)

	u := &User{ID: "u1", Username: "renamed"}
	updated, err := u.Update(context.Background(), s, "")
	require.NoError(t, err)
	assert.Equal(t, "PUT", rec.Method)
	assert.Equal(t, "/1/tenant1/users/u1", rec.Path)
	assert.JSONEq(t, `{"username":"renamed"}`, string(rec.Body))
	assert.Equal(t, "renamed", updated.Username)

	require.NoError(t, u.Delete(context.Background(), s))
	assert.Equal(t, "DELETE", rec.Method)
	assert.Equal(t, "/1/tenant1/users/u1", rec.Path)
}
