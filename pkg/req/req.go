package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const maxBodyBytes = 1 << 20

// Decode читает JSON тело запроса в T; неизвестные поля запрещены
func Decode[T any](body io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return v, fmt.Errorf("empty body")
		}
		return v, err
	}
	return v, nil
}
