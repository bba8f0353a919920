// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/libreshelf/library-backend/internal/models"
	"github.com/libreshelf/library-backend/internal/utils"
)

// OrderService implements the circulation state machine. Every mutation of a
// book's counters, its copies and its orders happens inside one database
// transaction that holds a row lock on the book, so the availability
// invariant (available copies + open paper orders = initial copies) can never
// be observed broken.
type OrderService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type CreateOrderRequest struct {
	BookID    uuid.UUID              `json:"book_id" validate:"required"`
	OrderType models.CirculationType `json:"order_type" validate:"required"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	UserID    *uuid.UUID              `json:"user_id,omitempty"`
	BookID    *uuid.UUID              `json:"book_id,omitempty"`
	Status    *models.OrderStatus     `json:"status,omitempty"`
	OrderType *models.CirculationType `json:"order_type,omitempty"`
}

func NewOrderService(db *gorm.DB, notificationService *NotificationService) *OrderService {
	return &OrderService{
		db:                  db,
		notificationService: notificationService,
	}
}

func (s *OrderService) CreateOrder(userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !req.OrderType.IsValid() {
		return nil, models.ErrUnsupportedOrderType
	}

	// A concurrent borrower can win the race for the same copy. The losing
	// transaction fails with a conflict and is retried once against the
	// fresh state; a second failure is reported to the caller.
	order, err := s.createOrderTransaction(userID, req)
	if err != nil && isRetryableConflict(err) {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"book_id": req.BookID,
		}).Warn("Order commit conflict, retrying once")
		order, err = s.createOrderTransaction(userID, req)
	}
	if err != nil {
		return nil, err
	}

	// Load relationships
	if err := s.db.Preload("Book").Preload("Book.Genre").Preload("BookCopy").
		First(order, order.ID).Error; err != nil {
		logrus.WithError(err).Warn("Failed to reload order relationships")
	}

	if s.notificationService != nil {
		go s.notificationService.NotifyOrderCreated(order)
	}

	return order, nil
}

func (s *OrderService) createOrderTransaction(userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	var order *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Verify the user exists and is active
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("user not found: %w", err)
		}
		if user.Status != models.UserStatusActive {
			return errors.New("user account is not active")
		}

		// Lock the book row. All circulation state hangs off this lock.
		var book models.Book
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&book, "id = ?", req.BookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrBookNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		order = &models.Order{
			UserID:    userID,
			BookID:    book.ID,
			OrderType: req.OrderType,
			OrderDate: time.Now(),
		}

		switch req.OrderType {
		case models.CirculationTypePaper:
			if err := s.reservePaperCopy(tx, &book, order); err != nil {
				return err
			}

		case models.CirculationTypeElectronic:
			// Unmetered: no availability check, the counter only records use.
			order.Status = models.OrderStatusNoPaper
			if err := tx.Model(&models.Book{}).Where("id = ?", book.ID).
				UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
				return fmt.Errorf("failed to update download count: %w", err)
			}

		case models.CirculationTypeAudio:
			order.Status = models.OrderStatusNoPaper
			if err := tx.Model(&models.Book{}).Where("id = ?", book.ID).
				UpdateColumn("listen_count", gorm.Expr("listen_count + 1")).Error; err != nil {
				return fmt.Errorf("failed to update listen count: %w", err)
			}

		default:
			return models.ErrUnsupportedOrderType
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

// reservePaperCopy allocates the lowest-numbered free copy, marks it taken
// and decrements the book's available counter, all under the book row lock.
func (s *OrderService) reservePaperCopy(tx *gorm.DB, book *models.Book, order *models.Order) error {
	var copies []models.BookCopy
	if err := tx.Where("book_id = ?", book.ID).
		Order("copy_number ASC").
		Find(&copies).Error; err != nil {
		return fmt.Errorf("failed to load copies: %w", err)
	}
	book.Copies = copies

	copy, err := book.ReservePaperCopy()
	if err != nil {
		return err
	}

	// Guarded flag flip. Zero rows affected means another transaction took
	// this copy between our read and our write.
	result := tx.Model(&models.BookCopy{}).
		Where("id = ? AND is_available = ?", copy.ID, true).
		Update("is_available", false)
	if result.Error != nil {
		return fmt.Errorf("failed to reserve copy: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrCommitConflict
	}

	if err := tx.Model(&models.Book{}).Where("id = ?", book.ID).
		UpdateColumn("available_copies", gorm.Expr("available_copies - 1")).Error; err != nil {
		return fmt.Errorf("failed to update available copies: %w", err)
	}

	order.BookCopyID = &copy.ID
	order.Status = models.OrderStatusAwaiting
	return nil
}

// AdvanceOrder marks an awaiting paper order as picked up. Only the awaiting
// to with_user transition exists; everything else is rejected.
func (s *OrderService) AdvanceOrder(orderID, actorID uuid.UUID, privileged bool) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Lock the order row so concurrent advances serialize and the loser
		// sees the updated status.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !order.IsOwnedBy(actorID) && !privileged {
			return models.ErrForbidden
		}

		if err := order.Advance(); err != nil {
			return err
		}

		if err := tx.Model(&order).Update("status", order.Status).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Book").Preload("BookCopy").First(&order, order.ID).Error; err != nil {
		logrus.WithError(err).Warn("Failed to reload order relationships")
	}
	return &order, nil
}

// DeleteOrder closes an order. Paper orders give their copy back to
// circulation in the same transaction. A copy that is already with the
// reader may only be reclaimed by a librarian or admin.
func (s *OrderService) DeleteOrder(orderID, actorID uuid.UUID, privileged bool) error {
	var deleted models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		// Lock the order row. Of two concurrent deletes the loser blocks here
		// and then sees the soft-deleted row as missing, instead of trying to
		// release the copy a second time.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !order.IsOwnedBy(actorID) && !privileged {
			return models.ErrForbidden
		}

		if err := order.DeletableBy(privileged); err != nil {
			return err
		}

		if order.HoldsCopy() {
			if err := s.releasePaperCopy(tx, &order); err != nil {
				return err
			}
		}

		if err := tx.Delete(&order).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}

		deleted = order
		return nil
	})

	if err != nil {
		return err
	}

	if s.notificationService != nil {
		go s.notificationService.NotifyOrderDeleted(&deleted)
	}

	return nil
}

func (s *OrderService) releasePaperCopy(tx *gorm.DB, order *models.Order) error {
	// Lock the book row so the counter and the copy flag move together.
	var book models.Book
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, "id = ?", order.BookID).Error; err != nil {
		return fmt.Errorf("failed to lock book: %w", err)
	}

	result := tx.Model(&models.BookCopy{}).
		Where("id = ? AND is_available = ?", *order.BookCopyID, false).
		Update("is_available", true)
	if result.Error != nil {
		return fmt.Errorf("failed to release copy: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// The copy was already free. That is a broken invariant, not a
		// user error, so it fails loudly instead of being absorbed.
		return models.ErrCopyAlreadyAvailable
	}

	if err := tx.Model(&models.Book{}).Where("id = ?", book.ID).
		UpdateColumn("available_copies", gorm.Expr("available_copies + 1")).Error; err != nil {
		return fmt.Errorf("failed to update available copies: %w", err)
	}

	return nil
}

func (s *OrderService) GetOrder(orderID, actorID uuid.UUID, privileged bool) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Book").Preload("Book.Genre").Preload("BookCopy").Preload("User").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !order.IsOwnedBy(actorID) && !privileged {
		return nil, models.ErrOrderNotFound
	}

	return &order, nil
}

func (s *OrderService) GetUserOrders(userID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID).
		Preload("Book").Preload("Book.Genre").Preload("BookCopy")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "order_date", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

func (s *OrderService) SearchOrders(params OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).
		Preload("User").Preload("Book").Preload("BookCopy")

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.BookID != nil {
		query = query.Where("book_id = ?", *params.BookID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.OrderType != nil {
		query = query.Where("order_type = ?", *params.OrderType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "order_date", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// isRetryableConflict recognizes both our own guarded-update conflict and the
// postgres serialization and deadlock failure codes.
func isRetryableConflict(err error) bool {
	if errors.Is(err, models.ErrCommitConflict) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "40001") || strings.Contains(msg, "40P01")
}
