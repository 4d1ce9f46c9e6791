package odoo_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentreports/erpauth/core/odoo"
)

// fakeERP is a minimal XML-RPC endpoint speaking just enough of the Odoo
// external API for the client tests.
type fakeERP struct {
	acceptPassword string
	uid            int64
}

func (f *fakeERP) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/xmlrpc/2/common", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "<methodName>authenticate</methodName>") {
			http.Error(w, "unexpected method", http.StatusBadRequest)
			return
		}
		if strings.Contains(string(body), "<string>"+f.acceptPassword+"</string>") {
			writeValue(w, fmt.Sprintf("<int>%d</int>", f.uid))
			return
		}
		// Odoo signals rejection with boolean false.
		writeValue(w, "<boolean>0</boolean>")
	})
	mux.HandleFunc("/xmlrpc/2/object", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch {
		case strings.Contains(string(body), "<string>read</string>"):
			writeValue(w, `<array><data><value><struct>
				<member><name>id</name><value><int>2</int></value></member>
				<member><name>name</name><value><string>Mitchell Admin</string></value></member>
				<member><name>login</name><value><string>admin</string></value></member>
			</struct></value></data></array>`)
		case strings.Contains(string(body), "<string>search_count</string>"):
			writeValue(w, "<int>42</int>")
		case strings.Contains(string(body), "<string>search_read</string>"):
			writeValue(w, `<array><data><value><struct>
				<member><name>id</name><value><int>7</int></value></member>
				<member><name>name</name><value><string>Lead A</string></value></member>
			</struct></value></data></array>`)
		default:
			http.Error(w, "unexpected method", http.StatusBadRequest)
		}
	})
	return mux
}

func writeValue(w http.ResponseWriter, value string) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0"?>
<methodResponse><params><param><value>%s</value></param></params></methodResponse>`, value)
}

func newFakeERP(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer((&fakeERP{acceptPassword: "secret", uid: 2}).handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Connect(t *testing.T) {
	t.Parallel()

	t.Run("authenticates and stores the uid", func(t *testing.T) {
		t.Parallel()

		srv := newFakeERP(t)
		client := odoo.NewClient(srv.URL, "production", "admin", "secret")

		require.NoError(t, client.Connect(context.Background()))
		defer client.Close()

		assert.Equal(t, int64(2), client.UID())
	})

	t.Run("wrong password yields ErrAuthenticationFailed", func(t *testing.T) {
		t.Parallel()

		srv := newFakeERP(t)
		client := odoo.NewClient(srv.URL, "production", "admin", "wrong")

		err := client.Connect(context.Background())
		assert.ErrorIs(t, err, odoo.ErrAuthenticationFailed)
	})

	t.Run("unreachable host yields transport error", func(t *testing.T) {
		t.Parallel()

		client := odoo.NewClient("http://127.0.0.1:1", "production", "admin", "secret")

		err := client.Connect(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, odoo.ErrAuthenticationFailed)
	})
}

func TestClient_ModelOperations(t *testing.T) {
	t.Parallel()

	t.Run("requires Connect first", func(t *testing.T) {
		t.Parallel()

		client := odoo.NewClient("http://erp.example.com", "production", "admin", "secret")

		_, err := client.ExecuteKw(context.Background(), "res.partner", "search", nil, nil)
		assert.ErrorIs(t, err, odoo.ErrNotConnected)
	})

	t.Run("read returns decoded records", func(t *testing.T) {
		t.Parallel()

		srv := newFakeERP(t)
		client := odoo.NewClient(srv.URL, "production", "admin", "secret")
		require.NoError(t, client.Connect(context.Background()))
		defer client.Close()

		records, err := client.Read(context.Background(), "res.users", []int64{2}, []string{"name", "login"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Mitchell Admin", records[0]["name"])
		assert.Equal(t, "admin", records[0]["login"])
	})

	t.Run("search_read returns decoded records", func(t *testing.T) {
		t.Parallel()

		srv := newFakeERP(t)
		client := odoo.NewClient(srv.URL, "production", "admin", "secret")
		require.NoError(t, client.Connect(context.Background()))
		defer client.Close()

		records, err := client.SearchRead(context.Background(), "crm.lead", nil, []string{"name"}, 10, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Lead A", records[0]["name"])
	})

	t.Run("search_count returns the count", func(t *testing.T) {
		t.Parallel()

		srv := newFakeERP(t)
		client := odoo.NewClient(srv.URL, "production", "admin", "secret")
		require.NoError(t, client.Connect(context.Background()))
		defer client.Close()

		count, err := client.SearchCount(context.Background(), "crm.lead", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(42), count)
	})
}

func TestClient_TestConnection(t *testing.T) {
	t.Parallel()

	srv := newFakeERP(t)
	client := odoo.NewClient(srv.URL, "production", "admin", "secret")

	info, err := client.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), info["uid"])
	assert.Equal(t, "Mitchell Admin", info["name"])
}
