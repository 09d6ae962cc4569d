package mail

import (
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/i18nx"
)

var deliveryKeys = map[Kind]string{
	KindAuthentication: i18nx.KeyDeliveryAuthentication,
	KindConnection:     i18nx.KeyDeliveryConnection,
	KindDisconnected:   i18nx.KeyDeliveryDisconnected,
	KindTimeout:        i18nx.KeyDeliveryTimeout,
	KindGeneral:        i18nx.KeyDeliveryGeneral,
	KindUnexpected:     i18nx.KeyDeliveryUnexpected,
}

// NewDeliveryFailedError turns a sender error into the client facing
// DELIVERY_FAILED error, keeping the failure kind in error_type.
func NewDeliveryFailedError(err error) *errorx.I18nError {
	kind := KindOf(err)
	key, ok := deliveryKeys[kind]
	if !ok {
		key = i18nx.KeyDeliveryUnexpected
	}
	return errorx.New(errorx.CodeDeliveryFailed, key).
		WithErrorType(kind.ErrorType()).
		WithCause(err)
}
