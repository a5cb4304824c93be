package mediasoup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/prik73/mediasoup-concept-2/internal/errors"
	"github.com/prik73/mediasoup-concept-2/internal/log"
)

const apiTimeout = 10 * time.Second

var client = resty.New().
	SetHeader("Content-Type", "application/json").
	SetTimeout(apiTimeout)

// Client talks to the media worker's control API. One router is created
// per room; transports, producers and consumers hang off routers.
type Client interface {
	CreateRouter(ctx context.Context) (*RouterInfo, error)
	CloseRouter(ctx context.Context, routerID string) error

	CreateWebRtcTransport(ctx context.Context, routerID string) (*WebRtcTransportInfo, error)
	CreatePlainTransport(ctx context.Context, routerID string, opts PlainTransportOptions) (*PlainTransportInfo, error)
	ConnectWebRtcTransport(ctx context.Context, transportID string, dtlsParameters []byte) error
	ConnectPlainTransport(ctx context.Context, transportID string, opts ConnectPlainOptions) error
	CloseTransport(ctx context.Context, transportID string) error

	Produce(ctx context.Context, transportID string, kind MediaKind, rtpParameters RtpParameters) (string, error)
	CloseProducer(ctx context.Context, producerID string) error

	CanConsume(ctx context.Context, routerID, producerID string, rtpCapabilities RtpCapabilities) (bool, error)
	Consume(ctx context.Context, transportID, producerID string, rtpCapabilities RtpCapabilities, paused bool) (*ConsumerInfo, error)
	ResumeConsumer(ctx context.Context, consumerID string) error
	CloseConsumer(ctx context.Context, consumerID string) error

	Health(ctx context.Context) error
}

type apiImpl struct {
	baseURL string
	logger  *log.Logger
}

// New creates a media worker API client backed by go-resty.
func New(baseURL string, logger *log.Logger) Client {
	if logger == nil {
		panic("logger is required")
	}
	return &apiImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (api *apiImpl) CreateRouter(ctx context.Context) (*RouterInfo, error) {
	var info RouterInfo
	if err := api.post(ctx, "/routers", nil, &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, errors.New(ErrInvalidPayload, "create router missing id")
	}
	return &info, nil
}

func (api *apiImpl) CloseRouter(ctx context.Context, routerID string) error {
	return api.delete(ctx, "/routers/"+routerID)
}

func (api *apiImpl) CreateWebRtcTransport(ctx context.Context, routerID string) (*WebRtcTransportInfo, error) {
	var info WebRtcTransportInfo
	path := fmt.Sprintf("/routers/%s/webrtc-transports", routerID)
	if err := api.post(ctx, path, nil, &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, errors.New(ErrInvalidPayload, "create webrtc transport missing id")
	}
	return &info, nil
}

func (api *apiImpl) CreatePlainTransport(
	ctx context.Context,
	routerID string,
	opts PlainTransportOptions,
) (*PlainTransportInfo, error) {
	var info PlainTransportInfo
	path := fmt.Sprintf("/routers/%s/plain-transports", routerID)
	if err := api.post(ctx, path, opts, &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, errors.New(ErrInvalidPayload, "create plain transport missing id")
	}
	return &info, nil
}

func (api *apiImpl) ConnectWebRtcTransport(ctx context.Context, transportID string, dtlsParameters []byte) error {
	body := map[string]interface{}{
		"dtlsParameters": json.RawMessage(dtlsParameters),
	}
	path := fmt.Sprintf("/transports/%s/connect", transportID)
	return api.post(ctx, path, body, nil)
}

func (api *apiImpl) ConnectPlainTransport(ctx context.Context, transportID string, opts ConnectPlainOptions) error {
	path := fmt.Sprintf("/transports/%s/connect", transportID)
	return api.post(ctx, path, opts, nil)
}

func (api *apiImpl) CloseTransport(ctx context.Context, transportID string) error {
	return api.delete(ctx, "/transports/"+transportID)
}

func (api *apiImpl) Produce(
	ctx context.Context,
	transportID string,
	kind MediaKind,
	rtpParameters RtpParameters,
) (string, error) {
	body := map[string]interface{}{
		"kind":          kind,
		"rtpParameters": rtpParameters,
	}
	var result struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/transports/%s/producers", transportID)
	if err := api.post(ctx, path, body, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New(ErrInvalidPayload, "produce missing id")
	}
	return result.ID, nil
}

func (api *apiImpl) CloseProducer(ctx context.Context, producerID string) error {
	return api.delete(ctx, "/producers/"+producerID)
}

func (api *apiImpl) CanConsume(
	ctx context.Context,
	routerID, producerID string,
	rtpCapabilities RtpCapabilities,
) (bool, error) {
	body := map[string]interface{}{
		"producerId":      producerID,
		"rtpCapabilities": rtpCapabilities,
	}
	var result struct {
		CanConsume bool `json:"canConsume"`
	}
	path := fmt.Sprintf("/routers/%s/can-consume", routerID)
	if err := api.post(ctx, path, body, &result); err != nil {
		return false, err
	}
	return result.CanConsume, nil
}

func (api *apiImpl) Consume(
	ctx context.Context,
	transportID, producerID string,
	rtpCapabilities RtpCapabilities,
	paused bool,
) (*ConsumerInfo, error) {
	body := map[string]interface{}{
		"producerId":      producerID,
		"rtpCapabilities": rtpCapabilities,
		"paused":          paused,
	}
	var info ConsumerInfo
	path := fmt.Sprintf("/transports/%s/consumers", transportID)
	if err := api.post(ctx, path, body, &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, errors.New(ErrInvalidPayload, "consume missing id")
	}
	return &info, nil
}

func (api *apiImpl) ResumeConsumer(ctx context.Context, consumerID string) error {
	path := fmt.Sprintf("/consumers/%s/resume", consumerID)
	return api.post(ctx, path, nil, nil)
}

func (api *apiImpl) CloseConsumer(ctx context.Context, consumerID string) error {
	return api.delete(ctx, "/consumers/"+consumerID)
}

func (api *apiImpl) Health(ctx context.Context) error {
	resp, err := client.R().
		SetContext(ctx).
		Get(api.baseURL + "/health")
	if err != nil {
		return errors.Wrap(ErrFailedRequest, err, "resty error")
	}
	if resp.IsError() {
		return errors.Newf(ErrNoneSuccessResponse, "worker health error: code %d", resp.StatusCode())
	}
	return nil
}

func (api *apiImpl) post(ctx context.Context, path string, body, result interface{}) error {
	api.logger.Debug("worker req", log.String("path", path), log.Any("body", body))

	req := client.R().
		SetContext(ctx).
		SetError(&apiResponse{})
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Post(api.baseURL + path)
	if err != nil {
		return errors.Wrap(ErrFailedRequest, err, "resty error")
	}
	return api.checkStatus(path, resp)
}

func (api *apiImpl) delete(ctx context.Context, path string) error {
	api.logger.Debug("worker req", log.String("path", path))

	resp, err := client.R().
		SetContext(ctx).
		SetError(&apiResponse{}).
		Delete(api.baseURL + path)
	if err != nil {
		return errors.Wrap(ErrFailedRequest, err, "resty error")
	}
	return api.checkStatus(path, resp)
}

func (api *apiImpl) checkStatus(path string, resp *resty.Response) error {
	if !resp.IsError() {
		api.logger.Debug("worker resp", log.String("path", path), log.Int("status", resp.StatusCode()))
		return nil
	}

	msg := ""
	if apiErr, ok := resp.Error().(*apiResponse); ok && apiErr != nil {
		msg = apiErr.Error
	}
	if resp.StatusCode() == 404 {
		return errors.Newf(ErrNotFound, "worker: %s (code %d, %s)", path, resp.StatusCode(), msg)
	}
	return errors.Newf(ErrNoneSuccessResponse, "worker http error: (code: %d, %s)", resp.StatusCode(), msg)
}
