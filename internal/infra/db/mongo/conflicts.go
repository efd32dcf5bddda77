package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"vidaview/internal/domain/shared/errs"
)

const (
	codeWriteConflict      = 112
	labelTransientTxnError = "TransientTransactionError"
	codeKindBooking        = "booking"
	codeKindPayment        = "payment"
)

// ErrTransactionAborted is returned when a duplicate key inside a transaction
// made the server abort it. Nothing else can run in that transaction.
var ErrTransactionAborted = errs.Conflict("mongo: duplicate key aborted the transaction")

// lostWriteRace reports a write the server refused because another
// transaction changed the document after this one's snapshot.
func lostWriteRace(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorCode(codeWriteConflict) || se.HasErrorLabel(labelTransientTxnError)
}

// writeErr maps a lost write race onto conflict and passes anything else through.
func writeErr(err, conflict error) error {
	if lostWriteRace(err) {
		return conflict
	}
	return err
}

// reserveCode claims a business code in its own session, outside any
// transaction carried by ctx. A taken code comes back as dup while the
// caller's transaction is still usable, so the next code can be tried in it.
// Reservations of rolled back units stay behind and are never handed out again.
func reserveCode(ctx context.Context, db *mongo.Database, kind, code string, dup error) error {
	codes := db.Collection(colCodes)
	err := db.Client().UseSession(ctx, func(sc mongo.SessionContext) error {
		_, err := codes.InsertOne(sc, bson.M{
			"_id":         kind + ":" + code,
			"kind":        kind,
			"reserved_at": time.Now().UTC(),
		})
		return err
	})
	if mongo.IsDuplicateKeyError(err) {
		return dup
	}
	return err
}

// insertErr maps a duplicate key on an aggregate insert. Outside a session the
// caller may retry with dup; inside one the transaction is already gone.
func insertErr(ctx context.Context, err, dup error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return writeErr(err, errs.Conflict("mongo: insert lost a write race"))
	}
	if mongo.SessionFromContext(ctx) != nil {
		return ErrTransactionAborted
	}
	return dup
}
