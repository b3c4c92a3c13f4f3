package database

import (
	"fmt"
	"time"

	"github.com/nfrund/livechat/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// DecodeMessage converts the record carried by a live notification into a
// domain.Message. Delete notifications may carry only the id; the other
// fields are then left empty.
func DecodeMessage(data any) (domain.Message, error) {
	switch v := data.(type) {
	case domain.Message:
		return v, nil
	case *domain.Message:
		if v == nil {
			return domain.Message{}, fmt.Errorf("decode message: nil record")
		}
		return *v, nil
	case map[string]any:
		return decodeMessageMap(v)
	case map[any]any:
		converted := make(map[string]any, len(v))
		for k, val := range v {
			converted[fmt.Sprint(k)] = val
		}
		return decodeMessageMap(converted)
	default:
		return domain.Message{}, fmt.Errorf("decode message: unexpected record type %T", data)
	}
}

func decodeMessageMap(m map[string]any) (domain.Message, error) {
	id, err := decodeRecordID(m["id"])
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{ID: id}
	msg.Content, _ = m["content"].(string)
	msg.UserName, _ = m["user_name"].(string)
	msg.AvatarURL, _ = m["avatar_url"].(string)
	msg.CreatedAt = decodeTime(m["created_at"])
	return msg, nil
}

func decodeRecordID(v any) (string, error) {
	switch id := v.(type) {
	case surrealmodels.RecordID:
		return recordIDString(&id), nil
	case *surrealmodels.RecordID:
		if id == nil {
			break
		}
		return recordIDString(id), nil
	case string:
		if id != "" {
			return id, nil
		}
	case map[string]any:
		table, _ := id["Table"].(string)
		if table == "" {
			table, _ = id["tb"].(string)
		}
		key, ok := id["ID"]
		if !ok {
			key, ok = id["id"]
		}
		if table != "" && ok {
			return fmt.Sprintf("%s:%v", table, key), nil
		}
	}
	return "", fmt.Errorf("decode message: missing or unsupported id %T", v)
}

func decodeTime(v any) time.Time {
	switch t := v.(type) {
	case surrealmodels.CustomDateTime:
		return t.Time
	case *surrealmodels.CustomDateTime:
		if t != nil {
			return t.Time
		}
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
