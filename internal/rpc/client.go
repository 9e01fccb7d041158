package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"stockhub/internal/services"
)

// Client calls stockhub.v1.Inventory with the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

// Transfer sends req.IdempotencyKey, when set, as request metadata.
func (c *Client) Transfer(ctx context.Context, req services.TransferRequest, opts ...grpc.CallOption) (*services.TransferReceipt, error) {
	if req.IdempotencyKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, IdempotencyMetadataKey, req.IdempotencyKey)
	}
	out := new(services.TransferReceipt)
	if err := c.invoke(ctx, "Transfer", &req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) LowStockAlerts(ctx context.Context, opts ...grpc.CallOption) (*InventoryList, error) {
	out := new(InventoryList)
	if err := c.invoke(ctx, "LowStockAlerts", &LowStockAlertsRequest{}, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StoreInventory(ctx context.Context, storeID int64, opts ...grpc.CallOption) (*InventoryList, error) {
	out := new(InventoryList)
	if err := c.invoke(ctx, "StoreInventory", &StoreInventoryRequest{StoreID: storeID}, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetMinStock(ctx context.Context, in SetMinStockRequest, opts ...grpc.CallOption) (*MessageReply, error) {
	out := new(MessageReply)
	if err := c.invoke(ctx, "SetMinStock", &in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
