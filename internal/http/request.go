package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// PathUUID parses the mux path variable name as a uuid.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	value := mux.Vars(r)[name]
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed parsing %s=%q with error=%w", name, value, err)
	}
	return id, nil
}
