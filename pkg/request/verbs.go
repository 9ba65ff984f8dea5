package request

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Get sends a GET to path.
func (o *Orchestrator) Get(ctx context.Context, path string) (domain.Response, error) {
	return o.Send(ctx, domain.RequestSpec{Path: path, Method: domain.MethodGet})
}

// Post serialises body as JSON and sends it.
func (o *Orchestrator) Post(ctx context.Context, path string, body any) (domain.Response, error) {
	return o.sendJSON(ctx, domain.MethodPost, path, body)
}

// Put serialises body as JSON and sends it.
func (o *Orchestrator) Put(ctx context.Context, path string, body any) (domain.Response, error) {
	return o.sendJSON(ctx, domain.MethodPut, path, body)
}

// Patch serialises body as JSON and sends it.
func (o *Orchestrator) Patch(ctx context.Context, path string, body any) (domain.Response, error) {
	return o.sendJSON(ctx, domain.MethodPatch, path, body)
}

// Delete sends a DELETE to path.
func (o *Orchestrator) Delete(ctx context.Context, path string) (domain.Response, error) {
	return o.Send(ctx, domain.RequestSpec{Path: path, Method: domain.MethodDelete})
}

func (o *Orchestrator) sendJSON(ctx context.Context, method domain.Method, path string, body any) (domain.Response, error) {
	spec := domain.RequestSpec{Path: path, Method: method}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			apiErr := domain.NewAPIError(0, domain.KindInvalidRequest, "Invalid request: body is not serialisable", nil, err)
			return domain.Response{}, apiErr
		}
		spec.Body = data
	}
	return o.Send(ctx, spec)
}

// DecodeJSON converts a JSON body into out (a pointer to a struct, slice or map)
// using mapstructure tags. Timestamps in RFC 3339 form are parsed into time.Time.
func DecodeJSON(body domain.Body, out any) error {
	if body.Kind != domain.BodyJSON {
		return fmt.Errorf("decode: body is %s, not json", body.Kind)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := decoder.Decode(body.JSON); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
