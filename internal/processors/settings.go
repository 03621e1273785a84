package processors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSettings — настройки процессора не разбираются или некорректны.
var ErrInvalidSettings = errors.New("invalid processor settings")

// decodeSettings раскладывает settings в T.
//
// Поддерживаются: nil (нулевое T), T, *T, []byte/json.RawMessage и любые
// значения, которые сериализуются в JSON (map из API или YAML).
func decodeSettings[T any](settings any) (T, error) {
	var out T

	switch v := settings.(type) {
	case nil:
		return out, nil
	case T:
		return v, nil
	case *T:
		if v == nil {
			return out, nil
		}
		return *v, nil
	case json.RawMessage:
		return out, unmarshalSettings(v, &out)
	case []byte:
		return out, unmarshalSettings(v, &out)
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return out, unmarshalSettings(data, &out)
}

func unmarshalSettings(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}
