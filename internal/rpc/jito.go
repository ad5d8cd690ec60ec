package rpc

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

type JitoRequestBody struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// ResponseBody represents the structure of the response from the Jito API.
type JitoResponseBody struct {
	Jsonrpc string             `json:"jsonrpc"`
	ID      int                `json:"id"`
	Result  json.RawMessage    `json:"result,omitempty"`
	Error   *JitoErrorResponse `json:"error,omitempty"`
}

type JitoErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *JitoErrorResponse) Error() string {
	return fmt.Sprintf("jito error %d: %s", e.Code, e.Message)
}

// JitoSender submits transactions to a Jito block engine instead of the
// regular RPC node.
type JitoSender struct {
	url        string
	httpClient *http.Client
}

func NewJitoSender(blockEngineUrl string) *JitoSender {
	return &JitoSender{
		url:        fmt.Sprintf("%s/api/v1/transactions", strings.TrimRight(blockEngineUrl, "/")),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *JitoSender) Send(ctx context.Context, transaction *solana.Transaction) (solana.Signature, error) {
	msg, err := transaction.MarshalBinary()
	if err != nil {
		return solana.Signature{}, err
	}

	requestBody := JitoRequestBody{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "sendTransaction",
		Params:  []interface{}{base58.Encode(msg)},
	}

	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return solana.Signature{}, err
	}

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err = gzipWriter.Write(reqBody); err != nil {
		return solana.Signature{}, err
	}
	if err = gzipWriter.Close(); err != nil {
		return solana.Signature{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, &buf)
	if err != nil {
		return solana.Signature{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return solana.Signature{}, unavailable("jito sendTransaction", err)
	}
	defer resp.Body.Close()

	var responseBody JitoResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return solana.Signature{}, unavailable("jito sendTransaction", err)
	}

	if responseBody.Error != nil {
		return solana.Signature{}, unavailable("jito sendTransaction", responseBody.Error)
	}

	var result string
	if err := json.Unmarshal(responseBody.Result, &result); err != nil {
		return solana.Signature{}, unavailable("jito sendTransaction", errors.New("missing signature in result"))
	}

	return solana.SignatureFromBase58(result)
}
