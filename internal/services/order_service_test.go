// internal/services/order_service_test.go
package services

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/libreshelf/library-backend/internal/database"
	"github.com/libreshelf/library-backend/internal/models"
)

// OrderServiceTestSuite exercises the circulation state machine against a real
// postgres database. Set TEST_DATABASE_DSN to run it, e.g.
//
//	TEST_DATABASE_DSN="host=localhost user=postgres dbname=libreshelf_test sslmode=disable" go test ./internal/services/
type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OrderService
	genre   models.Genre
}

func (suite *OrderServiceTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		suite.T().Skip("TEST_DATABASE_DSN not set, skipping database tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(database.RunMigrations(db))

	suite.db = db
	suite.service = NewOrderService(db, nil)

	suite.genre = models.Genre{
		Name:        fmt.Sprintf("test-genre-%s", uuid.New().String()[:8]),
		Description: "fixture genre",
	}
	suite.Require().NoError(db.Create(&suite.genre).Error)
}

func (suite *OrderServiceTestSuite) createUser(userType models.UserType) models.User {
	tag := uuid.New().String()[:8]
	user := models.User{
		Username: "user_" + tag,
		Email:    fmt.Sprintf("user_%s@example.com", tag),
		UserType: userType,
		Status:   models.UserStatusActive,
	}
	suite.Require().NoError(user.SetPassword("SecurePass123!"))
	suite.Require().NoError(suite.db.Create(&user).Error)
	return user
}

func (suite *OrderServiceTestSuite) createBook(types []models.CirculationType, initialCopies int) models.Book {
	available := make(pq.StringArray, len(types))
	for i, t := range types {
		available[i] = string(t)
	}

	book := models.Book{
		Title:           "Fixture Book " + uuid.New().String()[:8],
		Author:          "Fixture Author",
		GenreID:         suite.genre.ID,
		AvailableTypes:  available,
		InitialCopies:   initialCopies,
		AvailableCopies: initialCopies,
	}
	suite.Require().NoError(suite.db.Create(&book).Error)

	for n := 1; n <= initialCopies; n++ {
		copy := models.BookCopy{BookID: book.ID, CopyNumber: n, IsAvailable: true}
		suite.Require().NoError(suite.db.Create(&copy).Error)
	}
	return book
}

func (suite *OrderServiceTestSuite) reloadBook(id uuid.UUID) models.Book {
	var book models.Book
	suite.Require().NoError(suite.db.First(&book, "id = ?", id).Error)
	return book
}

func (suite *OrderServiceTestSuite) TestPaperOrderReservesLowestCopy() {
	user := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypePaper}, 2)

	order, err := suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID:    book.ID,
		OrderType: models.CirculationTypePaper,
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.OrderStatusAwaiting, order.Status)
	suite.Require().NotNil(order.BookCopyID)
	suite.Require().NotNil(order.BookCopy)
	assert.Equal(suite.T(), 1, order.BookCopy.CopyNumber)
	assert.Equal(suite.T(), 1, suite.reloadBook(book.ID).AvailableCopies)
}

func (suite *OrderServiceTestSuite) TestPaperOrderExhaustion() {
	user := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypePaper}, 1)

	_, err := suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypePaper,
	})
	suite.Require().NoError(err)

	_, err = suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypePaper,
	})
	assert.ErrorIs(suite.T(), err, models.ErrNoCopyAvailable)
	assert.Equal(suite.T(), 0, suite.reloadBook(book.ID).AvailableCopies)
}

func (suite *OrderServiceTestSuite) TestPaperOrderOnElectronicOnlyBook() {
	user := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypeElectronic}, 0)

	_, err := suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypePaper,
	})
	assert.ErrorIs(suite.T(), err, models.ErrNotPaperEnabled)
}

func (suite *OrderServiceTestSuite) TestElectronicOrderIsUnmetered() {
	user := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypeElectronic}, 0)

	for i := 0; i < 3; i++ {
		order, err := suite.service.CreateOrder(user.ID, &CreateOrderRequest{
			BookID: book.ID, OrderType: models.CirculationTypeElectronic,
		})
		suite.Require().NoError(err)
		assert.Equal(suite.T(), models.OrderStatusNoPaper, order.Status)
		assert.Nil(suite.T(), order.BookCopyID)
	}

	assert.Equal(suite.T(), int64(3), suite.reloadBook(book.ID).DownloadCount)
}

func (suite *OrderServiceTestSuite) TestAudioOrderCountsListens() {
	user := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypeAudio}, 0)

	order, err := suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypeAudio,
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.OrderStatusNoPaper, order.Status)
	assert.Equal(suite.T(), int64(1), suite.reloadBook(book.ID).ListenCount)
}

func (suite *OrderServiceTestSuite) TestAdvanceOrder() {
	user := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypePaper}, 1)

	order, err := suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypePaper,
	})
	suite.Require().NoError(err)

	advanced, err := suite.service.AdvanceOrder(order.ID, user.ID, false)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.OrderStatusWithUser, advanced.Status)

	_, err = suite.service.AdvanceOrder(order.ID, user.ID, false)
	assert.ErrorIs(suite.T(), err, models.ErrInvalidTransition)
}

func (suite *OrderServiceTestSuite) TestAdvanceOrderOfAnotherUser() {
	owner := suite.createUser(models.UserTypeReader)
	other := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypePaper}, 1)

	order, err := suite.service.CreateOrder(owner.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypePaper,
	})
	suite.Require().NoError(err)

	_, err = suite.service.AdvanceOrder(order.ID, other.ID, false)
	assert.ErrorIs(suite.T(), err, models.ErrForbidden)

	// A librarian may advance on the reader's behalf.
	_, err = suite.service.AdvanceOrder(order.ID, other.ID, true)
	assert.NoError(suite.T(), err)
}

func (suite *OrderServiceTestSuite) TestDeleteAwaitingOrderReleasesCopy() {
	user := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypePaper}, 1)

	order, err := suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypePaper,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, suite.reloadBook(book.ID).AvailableCopies)

	suite.Require().NoError(suite.service.DeleteOrder(order.ID, user.ID, false))
	assert.Equal(suite.T(), 1, suite.reloadBook(book.ID).AvailableCopies)

	var copy models.BookCopy
	suite.Require().NoError(suite.db.First(&copy, "id = ?", *order.BookCopyID).Error)
	assert.True(suite.T(), copy.IsAvailable)

	// The freed copy can be borrowed again.
	_, err = suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypePaper,
	})
	assert.NoError(suite.T(), err)
}

func (suite *OrderServiceTestSuite) TestDeleteWithUserOrderNeedsStaff() {
	user := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypePaper}, 1)

	order, err := suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypePaper,
	})
	suite.Require().NoError(err)

	_, err = suite.service.AdvanceOrder(order.ID, user.ID, false)
	suite.Require().NoError(err)

	err = suite.service.DeleteOrder(order.ID, user.ID, false)
	assert.ErrorIs(suite.T(), err, models.ErrForbidden)

	librarian := suite.createUser(models.UserTypeLibrarian)
	suite.Require().NoError(suite.service.DeleteOrder(order.ID, librarian.ID, true))
	assert.Equal(suite.T(), 1, suite.reloadBook(book.ID).AvailableCopies)
}

func (suite *OrderServiceTestSuite) TestGetOrderHidesOthersOrders() {
	owner := suite.createUser(models.UserTypeReader)
	other := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypeElectronic}, 0)

	order, err := suite.service.CreateOrder(owner.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypeElectronic,
	})
	suite.Require().NoError(err)

	_, err = suite.service.GetOrder(order.ID, other.ID, false)
	assert.ErrorIs(suite.T(), err, models.ErrOrderNotFound)

	fetched, err := suite.service.GetOrder(order.ID, other.ID, true)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), order.ID, fetched.ID)
}

func (suite *OrderServiceTestSuite) TestUnsupportedOrderType() {
	user := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypePaper}, 1)

	_, err := suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationType("braille"),
	})
	assert.ErrorIs(suite.T(), err, models.ErrUnsupportedOrderType)
}

func (suite *OrderServiceTestSuite) TestConcurrentPaperOrdersDoNotOversell() {
	const copies = 2
	const borrowers = copies + 1

	book := suite.createBook([]models.CirculationType{models.CirculationTypePaper}, copies)

	users := make([]models.User, borrowers)
	for i := range users {
		users[i] = suite.createUser(models.UserTypeReader)
	}

	results := make(chan error, borrowers)
	var wg sync.WaitGroup
	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := suite.service.CreateOrder(userID, &CreateOrderRequest{
				BookID:    book.ID,
				OrderType: models.CirculationTypePaper,
			})
			results <- err
		}(users[i].ID)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		// The loser of the race is told the book is out, never handed a copy
		// that someone else already holds.
		assert.True(suite.T(),
			errors.Is(err, models.ErrNoCopyAvailable) || errors.Is(err, models.ErrCommitConflict),
			"unexpected error: %v", err)
	}
	assert.Equal(suite.T(), copies, succeeded)
	assert.Equal(suite.T(), 0, suite.reloadBook(book.ID).AvailableCopies)

	// Every winner holds a distinct copy.
	var distinctCopies int64
	suite.Require().NoError(suite.db.Model(&models.Order{}).
		Where("book_id = ? AND status = ?", book.ID, models.OrderStatusAwaiting).
		Distinct("book_copy_id").
		Count(&distinctCopies).Error)
	assert.Equal(suite.T(), int64(copies), distinctCopies)
}

func (suite *OrderServiceTestSuite) TestConcurrentDeletesReleaseCopyOnce() {
	user := suite.createUser(models.UserTypeReader)
	book := suite.createBook([]models.CirculationType{models.CirculationTypePaper}, 1)

	order, err := suite.service.CreateOrder(user.ID, &CreateOrderRequest{
		BookID: book.ID, OrderType: models.CirculationTypePaper,
	})
	suite.Require().NoError(err)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- suite.service.DeleteOrder(order.ID, user.ID, false)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, notFound int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrOrderNotFound):
			notFound++
		default:
			suite.T().Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(suite.T(), 1, succeeded)
	assert.Equal(suite.T(), 1, notFound)

	// The copy went back to the shelf exactly once.
	assert.Equal(suite.T(), 1, suite.reloadBook(book.ID).AvailableCopies)
}

func TestIsRetryableConflict(t *testing.T) {
	assert.True(t, isRetryableConflict(models.ErrCommitConflict))
	assert.True(t, isRetryableConflict(fmt.Errorf("failed to reserve copy: %w", models.ErrCommitConflict)))
	assert.True(t, isRetryableConflict(errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)")))
	assert.True(t, isRetryableConflict(errors.New("ERROR: deadlock detected (SQLSTATE 40P01)")))

	assert.False(t, isRetryableConflict(models.ErrNoCopyAvailable))
	assert.False(t, isRetryableConflict(errors.New("connection refused")))
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
