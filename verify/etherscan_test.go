package verify

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
	"github.com/Thirumurugan7/Web3-Lottery-app/orchestrator"
)

const raffleArtifact = `{
	"contractName": "Raffle",
	"sourceName": "contracts/Raffle.sol",
	"abi": [{"type": "constructor", "inputs": [
		{"name": "vrfCoordinatorV2", "type": "address"},
		{"name": "entranceFee", "type": "uint256"}
	]}],
	"bytecode": "0x6080"
}`

const buildInfo = `{
	"solcLongVersion": "0.8.7+commit.e28d00a7",
	"input": {"language": "Solidity", "sources": {"contracts/Raffle.sol": {"content": "contract Raffle {}"}}}
}`

// explorer is a scripted Etherscan endpoint.
type explorer struct {
	mu       sync.Mutex
	forms    []map[string]string
	statuses []string
	submit   []string
	checks   int
}

func (e *explorer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch r.Form.Get("action") {
	case "verifysourcecode":
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		form["chainid"] = r.URL.Query().Get("chainid")
		e.forms = append(e.forms, form)

		resp := `{"status":"1","message":"OK","result":"guid-1"}`
		if len(e.submit) > 0 {
			resp = e.submit[0]
			e.submit = e.submit[1:]
		}
		fmt.Fprint(w, resp)
	case "checkverifystatus":
		e.checks++
		status := "Pass - Verified"
		if len(e.statuses) > 0 {
			status = e.statuses[0]
			e.statuses = e.statuses[1:]
		}
		fmt.Fprintf(w, `{"status":"1","message":"OK","result":%q}`, status)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func newTestVerifier(t *testing.T, ex *explorer) (*Etherscan, orchestrator.VerifyRequest) {
	t.Helper()

	srv := httptest.NewServer(ex)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "build-info"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build-info", "b.json"), []byte(buildInfo), 0644))

	artifact, err := contracts.ParseArtifact([]byte(raffleArtifact))
	require.NoError(t, err)

	v := NewEtherscan(srv.URL+"/v2/api", "secret", dir, zerolog.Nop())
	v.PollInterval = time.Millisecond
	v.MaxPolls = 5
	v.client.RetryMax = 0

	req := orchestrator.VerifyRequest{
		ChainID:  11155111,
		Address:  common.HexToAddress("0x00000000000000000000000000000000000000ab"),
		Artifact: artifact,
		Args:     []interface{}{common.HexToAddress("0xc0"), big.NewInt(10)},
	}
	return v, req
}

func TestVerifySubmitsStandardJSON(t *testing.T) {
	ex := &explorer{statuses: []string{"Pending in queue", "Pass - Verified"}}
	v, req := newTestVerifier(t, ex)

	require.NoError(t, v.Verify(context.Background(), req))

	require.Len(t, ex.forms, 1)
	form := ex.forms[0]
	assert.Equal(t, "11155111", form["chainid"])
	assert.Equal(t, "secret", form["apikey"])
	assert.Equal(t, "solidity-standard-json-input", form["codeformat"])
	assert.Equal(t, "contracts/Raffle.sol:Raffle", form["contractname"])
	assert.Equal(t, "v0.8.7+commit.e28d00a7", form["compilerversion"])
	assert.Equal(t, req.Address.Hex(), form["contractaddress"])
	assert.Contains(t, form["sourceCode"], `"language": "Solidity"`)

	encoded, err := req.Artifact.EncodeConstructorArgs(req.Args...)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(encoded), form["constructorArguements"])
	assert.Equal(t, 2, ex.checks)
}

func TestVerifyAlreadyVerified(t *testing.T) {
	ex := &explorer{submit: []string{`{"status":"0","message":"NOTOK","result":"Contract source code already verified"}`}}
	v, req := newTestVerifier(t, ex)

	require.NoError(t, v.Verify(context.Background(), req))
	assert.Zero(t, ex.checks)
}

func TestVerifyWaitsForIndexing(t *testing.T) {
	ex := &explorer{submit: []string{
		`{"status":"0","message":"NOTOK","result":"Unable to locate ContractCode at 0xab"}`,
	}}
	v, req := newTestVerifier(t, ex)

	require.NoError(t, v.Verify(context.Background(), req))
	assert.Len(t, ex.forms, 2)
}

func TestVerifyFailures(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		ex := &explorer{submit: []string{`{"status":"0","message":"NOTOK","result":"Invalid API Key"}`}}
		v, req := newTestVerifier(t, ex)
		err := v.Verify(context.Background(), req)
		assert.True(t, errors.Is(err, ErrVerificationFailed))
	})

	t.Run("bytecode mismatch", func(t *testing.T) {
		ex := &explorer{statuses: []string{"Fail - Unable to verify"}}
		v, req := newTestVerifier(t, ex)
		err := v.Verify(context.Background(), req)
		assert.True(t, errors.Is(err, ErrVerificationFailed))
	})

	t.Run("still pending", func(t *testing.T) {
		ex := &explorer{statuses: []string{"Pending in queue", "Pending in queue", "Pending in queue", "Pending in queue", "Pending in queue"}}
		v, req := newTestVerifier(t, ex)
		err := v.Verify(context.Background(), req)
		assert.True(t, errors.Is(err, ErrVerificationFailed))
		assert.Equal(t, 5, ex.checks)
	})

	t.Run("missing build info", func(t *testing.T) {
		ex := &explorer{}
		v, req := newTestVerifier(t, ex)
		v.artifactsDir = t.TempDir()
		assert.Error(t, v.Verify(context.Background(), req))
		assert.Empty(t, ex.forms)
	})
}
