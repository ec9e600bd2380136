//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseURL string

func TestMain(m *testing.M) {
	baseURL = os.Getenv("FRAUDWATCH_URL")
	if baseURL == "" {
		baseURL = "http://localhost:9088"
	}

	// Wait for fraudd to be ready
	for i := 0; i < 30; i++ {
		resp, err := http.Get(baseURL + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		time.Sleep(2 * time.Second)
	}

	os.Exit(m.Run())
}

func TestHealthCheck(t *testing.T) {
	resp := getJSON(t, "/healthz")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])

	api := getJSON(t, "/api/health")
	defer api.Body.Close()
	require.NoError(t, json.NewDecoder(api.Body).Decode(&body))
	assert.Equal(t, "connected", body["database"])
}

func TestUploadFlow(t *testing.T) {
	clear := deleteJSON(t, "/api/clear-data")
	clear.Body.Close()
	require.Equal(t, http.StatusOK, clear.StatusCode)

	// Step 1: Upload a CSV with two suspicious rows
	csv := "step,type,amount,nameOrig,oldbalanceOrg,newbalanceOrig,nameDest,oldbalanceDest,newbalanceDest\n" +
		"1,PAYMENT,2500,C1,10000,7500,M1,0,2500\n" +
		"1,TRANSFER,150000,C2,200000,50000,C3,0,0\n" +
		"2,CASH_OUT,60000,C4,0,0,C5,0,81182\n"
	resp := uploadCSV(t, "e2e.csv", csv)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var batch map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&batch))
	assert.Equal(t, "66.67%", batch["fraud_rate"])

	// Step 2: Flagged rows and the processing log are visible
	flagged := getJSON(t, "/api/fraud-transactions")
	defer flagged.Body.Close()
	var rows []map[string]any
	require.NoError(t, json.NewDecoder(flagged.Body).Decode(&rows))
	assert.Len(t, rows, 2)

	// Step 3: Statistics reflect the upload
	stats := getJSON(t, "/api/fraud-stats")
	defer stats.Body.Close()
	var summary map[string]any
	require.NoError(t, json.NewDecoder(stats.Body).Decode(&summary))
	assert.EqualValues(t, 2, summary["totalFraud"])
}

func TestJSONBatchFlow(t *testing.T) {
	batch := map[string]any{
		"filename": "e2e-api",
		"records": []map[string]any{
			{"step": 3, "type": "TRANSFER", "amount": 500000, "oldbalanceOrg": 500000, "newbalanceOrig": 0},
		},
	}
	resp := postJSON(t, "/api/batches", batch)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func uploadCSV(t *testing.T, filename, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := http.Post(baseURL+"/api/upload", w.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(baseURL+path, "application/json", bytes.NewBuffer(jsonBody))
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(baseURL + path)
	require.NoError(t, err)
	return resp
}

func deleteJSON(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, baseURL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}
