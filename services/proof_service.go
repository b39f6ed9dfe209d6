package services

import (
	"fmt"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kikiminyes/TutyJuicy/config"
	"github.com/kikiminyes/TutyJuicy/models"
	"github.com/kikiminyes/TutyJuicy/utils"
)

// SubmitPaymentProof stores an uploaded proof-of-payment photo and attaches
// it to the order, replacing any previous upload. Uploads go to S3 when the
// bucket is configured, otherwise to the local upload directory. Only orders
// still awaiting payment accept proofs.
func SubmitPaymentProof(db *gorm.DB, code string, fileHeader *multipart.FileHeader) (*models.Order, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}

	order, err := GetOrderByCode(db, code)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPendingPayment {
		return nil, ErrActionNotAvailable
	}

	var fileRef string
	if s3 := GetS3Service(); s3 != nil {
		fileRef, err = s3.UploadFile(fileHeader)
	} else {
		fileRef, err = utils.SaveUploadedFile(fileHeader, utils.UploadDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store payment proof: %w", err)
	}

	var oldRef string
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing models.PaymentProof
		findErr := tx.Where("order_id = ?", order.ID).First(&existing).Error
		if findErr == nil {
			// Replace: drop the row now, remove the old file only after
			// the transaction commits. A rollback keeps the row and must
			// keep its file too.
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			oldRef = existing.FileRef
		} else if findErr != gorm.ErrRecordNotFound {
			return findErr
		}

		proof := models.PaymentProof{
			OrderID:  order.ID,
			FileRef:  fileRef,
			FileType: models.ProofTypeImage,
		}
		return tx.Create(&proof).Error
	})
	if err != nil {
		deleteProofFile(fileRef)
		return nil, err
	}
	deleteProofFile(oldRef)

	config.Logger().Info("payment proof submitted",
		zap.Uint("order_id", order.ID), zap.String("file_ref", fileRef))
	return GetOrderByCode(db, code)
}

// ConfirmCashOnPickup records the sentinel proof for cash orders: no file,
// just the customer's confirmation that they will pay at pickup.
func ConfirmCashOnPickup(db *gorm.DB, code string) (*models.Order, error) {
	order, err := GetOrderByCode(db, code)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPendingPayment || !models.IsCashMethod(order.PaymentMethod) {
		return nil, ErrActionNotAvailable
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PaymentProof{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		proof := models.PaymentProof{
			OrderID:  order.ID,
			FileType: models.ProofTypeCashConfirmation,
		}
		return tx.Create(&proof).Error
	})
	if err != nil {
		return nil, err
	}
	return GetOrderByCode(db, code)
}

// GetPaymentProofURL returns a URL staff can use to view an order's proof
// image: a presigned S3 URL when the proof lives on S3, a local serving path
// otherwise. Cash confirmations have no file and return an empty URL.
func GetPaymentProofURL(db *gorm.DB, orderID uint) (string, error) {
	var proof models.PaymentProof
	if err := db.Where("order_id = ?", orderID).First(&proof).Error; err != nil {
		return "", err
	}
	if proof.FileType == models.ProofTypeCashConfirmation {
		return "", nil
	}

	if s3 := GetS3Service(); s3 != nil && strings.HasPrefix(proof.FileRef, "proofs/") {
		return s3.GetPresignedURL(proof.FileRef)
	}
	return utils.GetProofURL(proof.FileRef), nil
}

// deleteProofFile removes a stored proof file, best effort. An empty ref
// (cash confirmation) is a no-op.
func deleteProofFile(fileRef string) {
	if fileRef == "" {
		return
	}

	var err error
	if s3 := GetS3Service(); s3 != nil && strings.HasPrefix(fileRef, "proofs/") {
		err = s3.DeleteFile(fileRef)
	} else {
		err = utils.DeleteUploadedFile(fileRef, utils.UploadDir)
	}
	if err != nil {
		config.Logger().Warn("failed to delete proof file",
			zap.String("file_ref", fileRef), zap.Error(err))
	}
}
