package rpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"stockhub/internal/domain"
	applog "stockhub/internal/log"
	"stockhub/internal/services"
)

const ServiceName = "stockhub.v1.Inventory"

// IdempotencyMetadataKey carries the transfer idempotency key.
const IdempotencyMetadataKey = "idempotency-key"

type LowStockAlertsRequest struct{}

type StoreInventoryRequest struct {
	StoreID int64 `json:"storeId"`
}

type SetMinStockRequest struct {
	StoreID   int64 `json:"storeId"`
	ProductID int64 `json:"productId"`
	MinStock  int   `json:"minStock"`
}

type InventoryList struct {
	Items []domain.InventoryView `json:"items"`
}

type MessageReply struct {
	Message string `json:"message"`
}

// InventoryServer is the server API of stockhub.v1.Inventory.
type InventoryServer interface {
	Transfer(context.Context, *services.TransferRequest) (*services.TransferReceipt, error)
	LowStockAlerts(context.Context, *LowStockAlertsRequest) (*InventoryList, error)
	StoreInventory(context.Context, *StoreInventoryRequest) (*InventoryList, error)
	SetMinStock(context.Context, *SetMinStockRequest) (*MessageReply, error)
}

func unaryHandler[Req any](method string, call func(InventoryServer, context.Context, *Req) (any, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InventoryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(InventoryServer), ctx, req.(*Req))
		})
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Transfer", Handler: unaryHandler("Transfer", func(s InventoryServer, ctx context.Context, in *services.TransferRequest) (any, error) {
			return s.Transfer(ctx, in)
		})},
		{MethodName: "LowStockAlerts", Handler: unaryHandler("LowStockAlerts", func(s InventoryServer, ctx context.Context, in *LowStockAlertsRequest) (any, error) {
			return s.LowStockAlerts(ctx, in)
		})},
		{MethodName: "StoreInventory", Handler: unaryHandler("StoreInventory", func(s InventoryServer, ctx context.Context, in *StoreInventoryRequest) (any, error) {
			return s.StoreInventory(ctx, in)
		})},
		{MethodName: "SetMinStock", Handler: unaryHandler("SetMinStock", func(s InventoryServer, ctx context.Context, in *SetMinStockRequest) (any, error) {
			return s.SetMinStock(ctx, in)
		})},
	},
	Streams: []grpc.StreamDesc{},
}

// Server adapts the inventory services to InventoryServer.
type Server struct {
	Transfers *services.TransferService
	Alerts    *services.AlertService
	Inventory *services.InventoryService
}

func (s *Server) Transfer(ctx context.Context, in *services.TransferRequest) (*services.TransferReceipt, error) {
	req := *in
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(IdempotencyMetadataKey); len(v) > 0 {
			req.IdempotencyKey = strings.TrimSpace(v[0])
		}
	}
	res, err := s.Transfers.Transfer(ctx, req)
	if err != nil {
		return nil, toStatus("transfer", err)
	}
	applog.Audit(nil, "rpc.inventory.transfer", map[string]any{
		"source": req.SourceStoreID, "destination": req.DestinationStoreID,
		"product": req.ProductID, "qty": req.Quantity, "reference": res.Movement.Reference,
	})
	return &res, nil
}

func (s *Server) LowStockAlerts(ctx context.Context, _ *LowStockAlertsRequest) (*InventoryList, error) {
	rows, err := s.Alerts.ListLowStock(ctx)
	if err != nil {
		return nil, toStatus("low_stock", err)
	}
	return &InventoryList{Items: rows}, nil
}

func (s *Server) StoreInventory(ctx context.Context, in *StoreInventoryRequest) (*InventoryList, error) {
	rows, err := s.Inventory.StoreInventory(ctx, in.StoreID)
	if err != nil {
		return nil, toStatus("store_inventory", err)
	}
	return &InventoryList{Items: rows}, nil
}

func (s *Server) SetMinStock(ctx context.Context, in *SetMinStockRequest) (*MessageReply, error) {
	if err := s.Inventory.SetMinStock(ctx, in.StoreID, in.ProductID, in.MinStock); err != nil {
		return nil, toStatus("min_stock", err)
	}
	applog.Audit(nil, "rpc.inventory.minstock", map[string]any{
		"store": in.StoreID, "product": in.ProductID, "min_stock": in.MinStock,
	})
	return &MessageReply{Message: services.MsgMinStockUpdated}, nil
}

func toStatus(op string, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		code = codes.InvalidArgument
	case errors.Is(err, services.ErrInsufficientStock):
		code = codes.FailedPrecondition
	case errors.Is(err, services.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, services.ErrConflict):
		code = codes.AlreadyExists
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		code = codes.Internal
		applog.Error(nil, "rpc."+op+".fail", err, nil)
	}
	return status.Error(code, services.Message(err))
}

// accessLog is the gRPC counterpart of the HTTP access log.
func accessLog(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	applog.Info(nil, "rpc.access", map[string]any{
		"method":     info.FullMethod,
		"code":       status.Code(err).String(),
		"latency_ms": time.Since(start).Milliseconds(),
	})
	return resp, err
}

// NewServer returns a gRPC server exposing the inventory service and the
// standard health service.
func NewServer(impl InventoryServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(accessLog)}, opts...)
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, impl)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)
	return srv
}
