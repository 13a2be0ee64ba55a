package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/repository"
	postgresrepo "github.com/kirinyoku/barberbook/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/barberbook/internal/repository/redis"
	"github.com/kirinyoku/barberbook/internal/uow"
)

const (
	maxCommentLen = 1000
	defaultLimit  = 20
	maxLimit      = 100
)

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	uow    *uow.UoW
	logger *slog.Logger
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:  store,
		cache:  cache,
		uow:    uow.NewUoW(store),
		logger: logger,
	}
}

// Create stores a review of shopID by userID and folds its rating into the
// shop's average and review count.
//
// Returns:
//   - *domain.Review: the stored review.
//   - error: review.ErrInvalidRating or ErrCommentTooLong for bad input.
//   - error: review.ErrShopNotFound if the shop does not exist.
func (s *Service) Create(ctx context.Context, userID, shopID string, rating int, comment string) (*domain.Review, error) {
	const op = "service.review.Create"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingUser)
	}

	rv := domain.Review{ShopID: shopID, UserID: userID, Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := validate(rv); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		repo := s.store.Reviews().With(tx)

		avg, count, err := repo.LockShopRating(ctx, shopID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrShopNotFound
			}
			return err
		}

		if err := repo.Create(ctx, &rv); err != nil {
			return err
		}

		avg, count = nextRating(avg, count, rating)
		if err := repo.SetShopRating(ctx, shopID, avg, count); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			if err := s.cache.InvalidateCatalog(ctx, shopID); err != nil {
				s.logger.Warn("failed to invalidate catalog", slog.String("shop_id", shopID), slog.Any("error", err))
			}
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &rv, nil
}

// List pages through a shop's reviews, newest first. Unknown shops have no
// reviews.
func (s *Service) List(ctx context.Context, shopID string, limit, offset int) ([]domain.Review, error) {
	const op = "service.review.List"

	limit, offset, err := page(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.store.Reviews().ListByShop(ctx, shopID, limit, offset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.Review{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func validate(rv domain.Review) error {
	if rv.Rating < 1 || rv.Rating > 5 {
		return ErrInvalidRating
	}

	if utf8.RuneCountInString(rv.Comment) > maxCommentLen {
		return ErrCommentTooLong
	}

	return nil
}

func page(limit, offset int) (int, int, error) {
	if limit < 0 || offset < 0 {
		return 0, 0, ErrInvalidPagination
	}

	if limit == 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	return limit, offset, nil
}

// nextRating adds one rating to a shop's average. count is the display
// string kept on the shop, e.g. "120 avaliações"; its leading number is the
// review count.
func nextRating(avg float64, count string, rating int) (float64, string) {
	n := reviewCount(count)

	next := (avg*float64(n) + float64(rating)) / float64(n+1)

	return math.Round(next*10) / 10, fmt.Sprintf("%d avaliações", n+1)
}

// reviewCount reads the leading number of s, accepting "." as a thousands
// separator. Anything unparsable counts as zero.
func reviewCount(s string) int {
	var digits strings.Builder

	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '.':
		default:
			n, _ := strconv.Atoi(digits.String())
			return n
		}
	}

	n, _ := strconv.Atoi(digits.String())
	return n
}
