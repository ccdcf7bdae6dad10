// Package verify submits deployed contract sources to Etherscan-compatible
// block explorers.
package verify

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
	"github.com/Thirumurugan7/Web3-Lottery-app/orchestrator"
)

var ErrVerificationFailed = errors.New("verification failed")

const (
	statusPending         = "Pending in queue"
	statusPass            = "Pass - Verified"
	resultAlreadyVerified = "already verified"
	resultNoBytecode      = "Unable to locate ContractCode"
)

// Etherscan is an orchestrator.Verifier backed by the Etherscan v2 API.
type Etherscan struct {
	apiURL       string
	apiKey       string
	artifactsDir string
	client       *retryablehttp.Client
	logger       zerolog.Logger

	PollInterval time.Duration
	MaxPolls     int
}

// NewEtherscan creates a verifier. artifactsDir is searched for the
// build-info holding each contract's compiler input.
func NewEtherscan(apiURL, apiKey, artifactsDir string, logger zerolog.Logger) *Etherscan {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 30 * time.Second
	client.Logger = leveledLogger{logger: logger}

	return &Etherscan{
		apiURL:       apiURL,
		apiKey:       apiKey,
		artifactsDir: artifactsDir,
		client:       client,
		logger:       logger,
		PollInterval: 5 * time.Second,
		MaxPolls:     24,
	}
}

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

func (e *Etherscan) Verify(ctx context.Context, req orchestrator.VerifyRequest) error {
	if req.Artifact == nil {
		return fmt.Errorf("%w: no artifact for %s", ErrVerificationFailed, req.Address.Hex())
	}

	info, err := contracts.FindBuildInfo(e.artifactsDir, req.Artifact.SourceName)
	if err != nil {
		return err
	}

	encodedArgs, err := req.Artifact.EncodeConstructorArgs(req.Args...)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("apikey", e.apiKey)
	form.Set("module", "contract")
	form.Set("action", "verifysourcecode")
	form.Set("codeformat", "solidity-standard-json-input")
	form.Set("sourceCode", string(info.Input))
	form.Set("contractaddress", req.Address.Hex())
	form.Set("contractname", req.Artifact.FullyQualifiedName())
	form.Set("compilerversion", info.CompilerVersion())
	// Etherscan's parameter name is misspelled.
	form.Set("constructorArguements", hex.EncodeToString(encodedArgs))

	guid, err := e.submit(ctx, req.ChainID, form)
	if err != nil || guid == "" {
		return err
	}

	e.logger.Info().
		Str("address", req.Address.Hex()).
		Str("guid", guid).
		Msg("verification submitted")
	return e.waitForResult(ctx, req.ChainID, guid)
}

// submit posts the source and returns the status guid. An empty guid with a
// nil error means the contract was already verified.
func (e *Etherscan) submit(ctx context.Context, chainID uint64, form url.Values) (string, error) {
	for attempt := 0; ; attempt++ {
		resp, err := e.do(ctx, http.MethodPost, chainID, form)
		if err != nil {
			return "", err
		}
		if resp.Status == "1" {
			return resp.Result, nil
		}
		if strings.Contains(strings.ToLower(resp.Result), resultAlreadyVerified) {
			e.logger.Info().Msg("contract already verified")
			return "", nil
		}
		// The explorer may not have indexed a freshly deployed contract yet.
		if strings.Contains(resp.Result, resultNoBytecode) && attempt < e.MaxPolls {
			if err := sleep(ctx, e.PollInterval); err != nil {
				return "", err
			}
			continue
		}
		return "", fmt.Errorf("%w: %s: %s", ErrVerificationFailed, resp.Message, resp.Result)
	}
}

func (e *Etherscan) waitForResult(ctx context.Context, chainID uint64, guid string) error {
	query := url.Values{}
	query.Set("apikey", e.apiKey)
	query.Set("module", "contract")
	query.Set("action", "checkverifystatus")
	query.Set("guid", guid)

	for i := 0; i < e.MaxPolls; i++ {
		if err := sleep(ctx, e.PollInterval); err != nil {
			return err
		}

		resp, err := e.do(ctx, http.MethodGet, chainID, query)
		if err != nil {
			return err
		}

		switch {
		case resp.Result == statusPending:
			e.logger.Debug().Str("guid", guid).Msg("verification pending")
			continue
		case resp.Result == statusPass:
			return nil
		case strings.Contains(strings.ToLower(resp.Result), resultAlreadyVerified):
			return nil
		default:
			return fmt.Errorf("%w: %s", ErrVerificationFailed, resp.Result)
		}
	}
	return fmt.Errorf("%w: still pending after %d checks (guid %s)", ErrVerificationFailed, e.MaxPolls, guid)
}

func (e *Etherscan) do(ctx context.Context, method string, chainID uint64, params url.Values) (*apiResponse, error) {
	endpoint, err := url.Parse(e.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid explorer url %q: %w", e.apiURL, err)
	}
	q := endpoint.Query()
	q.Set("chainid", strconv.FormatUint(chainID, 10))

	var body io.Reader
	if method == http.MethodGet {
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
	} else {
		body = strings.NewReader(params.Encode())
	}
	endpoint.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build explorer request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	res, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer request failed: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read explorer response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned %s: %s", res.Status, strings.TrimSpace(string(data)))
	}

	var out apiResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode explorer response: %w", err)
	}
	return &out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// leveledLogger routes retryablehttp's logging through zerolog.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.logger.Error().Fields(kv).Msg(msg) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.logger.Debug().Fields(kv).Msg(msg) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.logger.Trace().Fields(kv).Msg(msg) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.logger.Warn().Fields(kv).Msg(msg) }
