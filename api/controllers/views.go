package controllers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simovate/simstack-backend/internal/catalog"
	"github.com/simovate/simstack-backend/pkg/db/models"
)

// The gorm models stay JSON-agnostic; these views are the wire shapes.

type variantView struct {
	ID            uuid.UUID        `json:"id"`
	ProductID     uuid.UUID        `json:"product_id"`
	ProductName   string           `json:"product_name,omitempty"`
	ProductType   string           `json:"product_type"`
	ProductCode   string           `json:"product_code"`
	SKU           string           `json:"sku"`
	Status        string           `json:"status"`
	DisplayPrice  decimal.Decimal  `json:"display_price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	HasDiscount   bool             `json:"has_discount"`
	Stock         int64            `json:"stock"`
}

func toVariantView(pv catalog.PricedVariant) variantView {
	view := variantView{
		ID:            pv.Variant.ID,
		ProductID:     pv.Variant.ProductID,
		ProductType:   pv.Variant.ProductType.String(),
		ProductCode:   pv.Variant.ProductCode,
		SKU:           pv.Variant.SKU,
		Status:        string(pv.Variant.Status),
		DisplayPrice:  pv.Quote.DisplayPrice,
		OriginalPrice: pv.Quote.OriginalPrice,
		HasDiscount:   pv.Quote.HasDiscount,
		Stock:         pv.Stock,
	}
	if pv.Variant.Product != nil {
		view.ProductName = pv.Variant.Product.Name
	}
	return view
}

type lotView struct {
	ID              uuid.UUID `json:"id"`
	VariantID       uuid.UUID `json:"variant_id"`
	Name            string    `json:"name"`
	Code            *string   `json:"code,omitempty"`
	InitialQuantity int64     `json:"initial_quantity"`
	Quantity        int64     `json:"quantity"`
	IsUsed          bool      `json:"is_used"`
	CreatedAt       time.Time `json:"created_at"`
}

func toLotView(lot models.StockLot) lotView {
	return lotView{
		ID:              lot.ID,
		VariantID:       lot.VariantID,
		Name:            lot.Name,
		Code:            lot.Code,
		InitialQuantity: lot.InitialQuantity,
		Quantity:        lot.Quantity,
		IsUsed:          lot.IsUsed,
		CreatedAt:       lot.CreatedAt,
	}
}

type lineItemView struct {
	ID          uuid.UUID       `json:"id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	ProductCode string          `json:"product_code"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Status      string          `json:"status"`
}

type orderView struct {
	ID          string          `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Status      string          `json:"status"`
	PaymentType string          `json:"payment_type"`
	Source      string          `json:"source"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Remark      *string         `json:"remark,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LineItems   []lineItemView  `json:"line_items"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toLineItemView(line models.OrderLineItem) lineItemView {
	return lineItemView{
		ID:          line.ID,
		VariantID:   line.VariantID,
		ProductCode: line.ProductCode,
		UnitPrice:   line.UnitPrice,
		Quantity:    line.Quantity,
		Subtotal:    line.Subtotal(),
		Status:      string(line.Status),
	}
}

func toOrderView(order *models.Order) orderView {
	lines := make([]lineItemView, 0, len(order.LineItems))
	for i := range order.LineItems {
		lines = append(lines, toLineItemView(order.LineItems[i]))
	}
	return orderView{
		ID:          order.ID,
		AccountID:   order.AccountID,
		Status:      string(order.Status),
		PaymentType: string(order.PaymentType),
		Source:      order.Source.String(),
		ShippingFee: order.ShippingFee,
		Remark:      order.Remark,
		TotalAmount: order.TotalAmount(),
		LineItems:   lines,
		CreatedAt:   order.CreatedAt,
	}
}

func toOrderViews(orders []models.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}
	return views
}

type ledgerEntryView struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	OrderID       *string         `json:"order_id,omitempty"`
	EntryType     string          `json:"entry_type"`
	Remark        *string         `json:"remark,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toLedgerEntryView(entry models.BalanceLedgerEntry) ledgerEntryView {
	return ledgerEntryView{
		ID:            entry.ID,
		Amount:        entry.Amount,
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		OrderID:       entry.OrderID,
		EntryType:     string(entry.EntryType),
		Remark:        entry.Remark,
		CreatedAt:     entry.CreatedAt,
	}
}

type receiptItemView struct {
	ProductName string          `json:"product_name"`
	ProductCode *string         `json:"product_code,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type receiptView struct {
	ID         uuid.UUID         `json:"id"`
	Number     string            `json:"number"`
	Type       string            `json:"type"`
	ReceiptTo  string            `json:"receipt_to"`
	TaxID      *string           `json:"tax_id,omitempty"`
	OrderID    *string           `json:"order_id,omitempty"`
	IssuedDate time.Time         `json:"issued_date"`
	Items      []receiptItemView `json:"items"`
	Total      decimal.Decimal   `json:"total"`
}

func toReceiptView(receipt *models.Receipt) receiptView {
	items := make([]receiptItemView, 0, len(receipt.Items))
	for i := range receipt.Items {
		item := receipt.Items[i]
		items = append(items, receiptItemView{
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}
	return receiptView{
		ID:         receipt.ID,
		Number:     receipt.Number,
		Type:       string(receipt.Type),
		ReceiptTo:  receipt.ReceiptTo,
		TaxID:      receipt.TaxID,
		OrderID:    receipt.OrderID,
		IssuedDate: receipt.IssuedDate,
		Items:      items,
		Total:      receipt.Total(),
	}
}

type reportView struct {
	AccountID        uuid.UUID       `json:"account_id"`
	Date             string          `json:"date"`
	Revenue          decimal.Decimal `json:"revenue"`
	OrderCount       int64           `json:"order_count"`
	ProductSoldCount int64           `json:"product_sold_count"`
	ByProductType    json.RawMessage `json:"by_product_type,omitempty"`
	BySource         json.RawMessage `json:"by_source,omitempty"`
	IsFinalized      bool            `json:"is_finalized"`
}

func toReportView(report *models.DailySalesReport) reportView {
	return reportView{
		AccountID:        report.AccountID,
		Date:             report.Date.Format("2006-01-02"),
		Revenue:          report.Revenue,
		OrderCount:       report.OrderCount,
		ProductSoldCount: report.ProductSoldCount,
		ByProductType:    report.ByProductType,
		BySource:         report.BySource,
		IsFinalized:      report.IsFinalized,
	}
}
