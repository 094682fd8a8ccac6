package jobs

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/geocoder89/bloghub/internal/domain/job"
)

const TypeUserWelcome = "user.welcome"

var (
	ErrUnknownJobType    = errors.New("unknown job type")
	ErrInvalidJobPayload = errors.New("invalid job payload")
)

// WelcomePayload is written in the registration transaction (outbox) and
// consumed by the notification worker.
type WelcomePayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   int64  `json:"userId"`
}

func (p WelcomePayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}

	return json.RawMessage(b), nil
}

func DecodeWelcome(j job.Job) (WelcomePayload, error) {
	if j.Type != TypeUserWelcome {
		return WelcomePayload{}, fmt.Errorf("%w: %s", ErrUnknownJobType, j.Type)
	}

	if len(j.Payload) == 0 {
		return WelcomePayload{}, ErrInvalidJobPayload
	}

	var p WelcomePayload

	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return WelcomePayload{}, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return p, nil
}
