package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"wise-investing/internal/dto"
	"wise-investing/internal/model"
	"wise-investing/internal/repository"
	"wise-investing/pkg/common"
	"wise-investing/pkg/logger"
	"wise-investing/pkg/utils"
)

type WatchlistService interface {
	GetWatchlists(ctx context.Context, email string) ([]dto.EnrichedWatchlist, error)
	CreateWatchlist(ctx context.Context, email string, req dto.CreateWatchlistRequest) (*model.Watchlist, error)
	GetSummary(ctx context.Context, email string) (*dto.StockSummary, error)
	AddStock(ctx context.Context, email string, req dto.AddStockRequest) (*model.Stock, error)
	UpdateStock(ctx context.Context, email string, stockID uint, req dto.UpdateStockRequest) error
	RemoveStock(ctx context.Context, email string, stockID uint) error
	MoveStocks(ctx context.Context, email string, req dto.MoveStocksRequest) error
}

type watchlistService struct {
	log           *logger.Logger
	userRepo      repository.UserRepository
	watchlistRepo repository.WatchlistRepository
	stockRepo     repository.StockRepository
	uow           repository.UnitOfWork
	enrichment    EnrichmentService
}

func NewWatchlistService(
	log *logger.Logger,
	userRepo repository.UserRepository,
	watchlistRepo repository.WatchlistRepository,
	stockRepo repository.StockRepository,
	uow repository.UnitOfWork,
	enrichment EnrichmentService,
) WatchlistService {
	return &watchlistService{
		log:           log,
		userRepo:      userRepo,
		watchlistRepo: watchlistRepo,
		stockRepo:     stockRepo,
		uow:           uow,
		enrichment:    enrichment,
	}
}

func (s *watchlistService) resolveUser(ctx context.Context, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, dto.ErrUnauthorized
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user %s", dto.ErrUnauthorized, email)
		}
		return nil, err
	}
	return user, nil
}

// GetWatchlists returns the user's watchlists with live quotes attached. A user
// without any watchlist gets the default ones created first.
func (s *watchlistService) GetWatchlists(ctx context.Context, email string) ([]dto.EnrichedWatchlist, error) {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	watchlists, err := s.watchlistRepo.Get(ctx, model.GetWatchlistParam{UserID: utils.ToPointer(user.ID), PreloadStocks: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlists: %w", err)
	}

	if len(watchlists) == 0 {
		defaults := make([]model.Watchlist, 0, len(common.GetDefaultWatchlistNames()))
		for _, name := range common.GetDefaultWatchlistNames() {
			defaults = append(defaults, model.Watchlist{UserID: user.ID, Name: name})
		}
		if err := s.watchlistRepo.CreateMany(ctx, defaults); err != nil {
			return nil, fmt.Errorf("failed to create default watchlists: %w", err)
		}
		s.log.InfoContext(ctx, "Created default watchlists", logger.IntField("user_id", int(user.ID)))

		// a concurrent load may have inserted some of them first
		watchlists, err = s.watchlistRepo.Get(ctx, model.GetWatchlistParam{UserID: utils.ToPointer(user.ID), PreloadStocks: true})
		if err != nil {
			return nil, fmt.Errorf("failed to get watchlists: %w", err)
		}
	}

	return s.enrichment.EnrichWatchlists(ctx, watchlists), nil
}

func (s *watchlistService) CreateWatchlist(ctx context.Context, email string, req dto.CreateWatchlistRequest) (*model.Watchlist, error) {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: watchlist name is required", dto.ErrValidation)
	}

	existing, err := s.watchlistRepo.Get(ctx, model.GetWatchlistParam{UserID: utils.ToPointer(user.ID), Names: []string{name}})
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlists: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: watchlist %q already exists", dto.ErrValidation, name)
	}

	watchlist := &model.Watchlist{UserID: user.ID, Name: name}
	if err := s.watchlistRepo.Create(ctx, watchlist); err != nil {
		return nil, fmt.Errorf("failed to create watchlist: %w", err)
	}
	return watchlist, nil
}

func (s *watchlistService) GetSummary(ctx context.Context, email string) (*dto.StockSummary, error) {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	watchlists, err := s.watchlistRepo.Get(ctx, model.GetWatchlistParam{
		UserID:        utils.ToPointer(user.ID),
		Names:         common.GetDefaultWatchlistNames(),
		PreloadStocks: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlists: %w", err)
	}

	summary := &dto.StockSummary{}
	for _, w := range watchlists {
		switch w.Name {
		case common.WATCHLIST_PORTFOLIO:
			summary.PortfolioStocks += len(w.Stocks)
		case common.WATCHLIST_GENERAL:
			summary.GeneralStocks += len(w.Stocks)
		}
	}
	return summary, nil
}

// AddStock adds a ticker to the named watchlist. Purchase prices are only kept
// outside the general watchlist.
func (s *watchlistService) AddStock(ctx context.Context, email string, req dto.AddStockRequest) (*model.Stock, error) {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	symbol := utils.NormalizeSymbol(req.Symbol)
	name := strings.TrimSpace(req.Name)
	if symbol == "" || name == "" {
		return nil, fmt.Errorf("%w: symbol and name are required", dto.ErrValidation)
	}

	watchlists, err := s.watchlistRepo.Get(ctx, model.GetWatchlistParam{
		UserID: utils.ToPointer(user.ID),
		Names:  []string{req.WatchlistName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlists: %w", err)
	}
	if len(watchlists) == 0 {
		return nil, fmt.Errorf("watchlist %q: %w", req.WatchlistName, dto.ErrNotFound)
	}

	stock := &model.Stock{
		WatchlistID: watchlists[0].ID,
		Symbol:      symbol,
		Name:        name,
	}
	if req.WatchlistName != common.WATCHLIST_GENERAL && req.PurchasePrice != nil {
		if *req.PurchasePrice <= 0 {
			return nil, fmt.Errorf("%w: purchase price must be positive", dto.ErrValidation)
		}
		stock.PurchasePrice = utils.ToPointer(*req.PurchasePrice)
	}

	if err := s.stockRepo.Create(ctx, stock); err != nil {
		return nil, fmt.Errorf("failed to create stock: %w", err)
	}
	return stock, nil
}

// ownedStocks returns the stocks with the given ids when all of them belong to user.
func (s *watchlistService) ownedStocks(ctx context.Context, userID uint, ids []uint, opts ...utils.DBOption) ([]model.Stock, error) {
	stocks, err := s.stockRepo.Get(ctx, model.GetStockParam{IDs: ids, UserID: utils.ToPointer(userID)}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to get stocks: %w", err)
	}
	if len(stocks) != len(uniqueIDs(ids)) {
		return nil, fmt.Errorf("stocks %v: %w", ids, dto.ErrNotFound)
	}
	return stocks, nil
}

func (s *watchlistService) UpdateStock(ctx context.Context, email string, stockID uint, req dto.UpdateStockRequest) error {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return err
	}
	stocks, err := s.ownedStocks(ctx, user.ID, []uint{stockID})
	if err != nil {
		return err
	}

	param := model.UpdateStockParam{}
	if req.Symbol != nil {
		symbol := utils.NormalizeSymbol(*req.Symbol)
		if symbol == "" {
			return fmt.Errorf("%w: symbol must not be empty", dto.ErrValidation)
		}
		param.Symbol = &symbol
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return fmt.Errorf("%w: name must not be empty", dto.ErrValidation)
		}
		param.Name = &name
	}
	if req.PurchasePrice != nil {
		if *req.PurchasePrice <= 0 {
			return fmt.Errorf("%w: purchase price must be positive", dto.ErrValidation)
		}
		watchlist, err := s.watchlistRepo.GetByID(ctx, stocks[0].WatchlistID)
		if err != nil {
			return err
		}
		if watchlist.Name != common.WATCHLIST_GENERAL {
			param.PurchasePrice = utils.ToPointer(*req.PurchasePrice)
		}
	}

	if err := s.stockRepo.Update(ctx, stockID, param); err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return nil
}

func (s *watchlistService) RemoveStock(ctx context.Context, email string, stockID uint) error {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return err
	}
	if _, err := s.ownedStocks(ctx, user.ID, []uint{stockID}); err != nil {
		return err
	}

	if _, err := s.stockRepo.Delete(ctx, []uint{stockID}); err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}
	return nil
}

// MoveStocks moves stocks between two watchlists of the same user. An empty
// id list is a no-op.
func (s *watchlistService) MoveStocks(ctx context.Context, email string, req dto.MoveStocksRequest) error {
	if len(req.StockIDs) == 0 {
		return nil
	}

	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return err
	}

	destinations, err := s.watchlistRepo.Get(ctx, model.GetWatchlistParam{
		IDs:    []uint{req.DestinationWatchlistID},
		UserID: utils.ToPointer(user.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to get watchlists: %w", err)
	}
	if len(destinations) == 0 {
		return fmt.Errorf("watchlist %d: %w", req.DestinationWatchlistID, dto.ErrNotFound)
	}

	return s.uow.Run(func(opts ...utils.DBOption) error {
		if _, err := s.ownedStocks(ctx, user.ID, req.StockIDs, opts...); err != nil {
			return err
		}
		if _, err := s.stockRepo.MoveToWatchlist(ctx, req.StockIDs, req.DestinationWatchlistID, opts...); err != nil {
			return fmt.Errorf("failed to move stocks: %w", err)
		}
		return nil
	})
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
