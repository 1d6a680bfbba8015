package prediction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kilianp07/traveldelay/core/model"
)

// ParseRequest decodes a request body and checks that every required field
// is present. Only presence is checked; value types are left to the
// estimator. All failures are KindBadRequest.
func ParseRequest(body []byte) (model.Features, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, badRequest(MsgNoData, nil)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, badRequest(fmt.Sprintf("Invalid JSON body: %v", err), err)
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, badRequest("Invalid JSON body: unexpected data after JSON value", err)
	}
	if v == nil {
		return nil, badRequest(MsgNoData, nil)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, badRequest(MsgNotObject, nil)
	}
	f := model.Features(obj)
	if err := Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate reports the required fields absent from f.
func Validate(f model.Features) error {
	if missing := f.Missing(); len(missing) > 0 {
		return missingFields(missing)
	}
	return nil
}
