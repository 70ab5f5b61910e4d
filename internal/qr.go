package internal

import (
	"strconv"

	"github.com/google/uuid"
)

// BuildVerificationURL returns the opaque URL encoded into a registration's
// QR code: {base}/verify-attendance/{eventoID}/{inscripcionID}/{token}.
//
// The token is stored verbatim on the row but is NOT compared by the
// verification endpoint; access control there rests on the staff role check
// alone, so the token is cosmetic. Kept for compatibility with already
// printed codes.
func BuildVerificationURL(baseURL string, eventoID, inscripcionID int) string {
	return baseURL + "/verify-attendance/" +
		strconv.Itoa(eventoID) + "/" +
		strconv.Itoa(inscripcionID) + "/" +
		uuid.NewString()
}
