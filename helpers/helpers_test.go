package helpers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldErrors(t *testing.T) {
	t.Parallel()

	assert.NoError(t, FoldErrors(nil))
	assert.NoError(t, FoldErrors([]error{nil, nil}))
	e1 := fmt.Errorf("first")
	assert.Equal(t, e1, FoldErrors([]error{nil, e1}))
	assert.EqualError(t, FoldErrors([]error{e1, nil, fmt.Errorf("second")}), "first\nsecond")
}

func TestIntSecondDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5*time.Second, IntSecondDefault(0, 5*time.Second))
	assert.Equal(t, 5*time.Second, IntSecondDefault(-1, 5*time.Second))
	assert.Equal(t, 7*time.Second, IntSecondDefault(7, 5*time.Second))
}

func TestMockHTTP(t *testing.T) {
	t.Parallel()

	mock := &MockHTTP{Body: []byte(`{"ok":true}`)}
	client := &http.Client{Transport: mock}
	resp, err := client.Post("http://test/x", "text/plain", strings.NewReader("payload"))
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(b))

	rs := mock.Requests()
	require.Len(t, rs, 1)
	assert.Equal(t, "payload", string(rs[0].Body))
	assert.Equal(t, "/x", rs[0].Req.URL.Path)

	mock.Err = fmt.Errorf("refused")
	_, err = client.Get("http://test/y")
	assert.Error(t, err)
	assert.Len(t, mock.Requests(), 2)
}
