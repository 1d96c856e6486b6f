package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type CreateMeetingRequest struct {
	Chairs string `json:"chairs"`
}

type AddAgendaItemRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Owner       string `json:"owner" validate:"omitempty,max=39"`
	Timebox     int    `json:"timebox" validate:"gte=0,lte=1440"`
}

type MoveAgendaItemRequest struct {
	To *int `json:"to" validate:"required,gte=0"`
}

type EnqueueRequest struct {
	Topic    string `json:"topic" validate:"max=500"`
	Username string `json:"username" validate:"omitempty,max=39"`
}

type AddChairRequest struct {
	Username string `json:"username" validate:"required,max=39"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

const maxBodyBytes = 64 << 10

// decodeJSON reads and validates a JSON body. An empty body decodes as the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return fmt.Errorf("%w: invalid json", errBadRequest)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
