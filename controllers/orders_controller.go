package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/velora-shop/velora-backend/database"
	"github.com/velora-shop/velora-backend/dto"
	"github.com/velora-shop/velora-backend/models"
	"github.com/velora-shop/velora-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// stockError marks a checkout rejected because a product ran out between
// the cart and the guarded decrement. Anything else from reserveStock is a
// database failure.
type stockError struct {
	name string
}

func (e *stockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.name)
}

// releaseContext detaches compensation writes from the request context. A
// cancelled request is a likely reason the reservation failed in the first
// place, and the re-increments must still go through.
func releaseContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// transitionFilter pins the status observed when the order was read, so two
// concurrent transitions from the same state can never both apply.
func transitionFilter(id bson.ObjectID, observed models.OrderStatus) bson.M {
	return bson.M{"_id": id, "status": observed}
}

// reserveStock decrements inventory with a guarded update per item: the
// filter requires quantity >= n, so a concurrent order can never push stock
// below zero. On the first failure every already-reserved item is released
// again and the failing product is reported.
func reserveStock(c *gin.Context, productsCol *mongo.Collection, items []models.OrderItem) error {
	ctx := c.Request.Context()
	reserved := make([]models.OrderItem, 0, len(items))

	for _, it := range items {
		res, err := productsCol.UpdateOne(ctx,
			bson.M{"_id": it.ProductID, "quantity": bson.M{"$gte": it.Quantity}},
			bson.M{"$inc": bson.M{"quantity": -it.Quantity}},
		)
		if err == nil && res.ModifiedCount == 1 {
			reserved = append(reserved, it)
			continue
		}

		releaseStock(releaseContext(ctx), productsCol, reserved)
		if err != nil {
			return err
		}
		return &stockError{name: it.Name}
	}

	return nil
}

// releaseStock gives the reserved quantities back. Failures are logged
// rather than returned; there is nothing further to unwind.
func releaseStock(ctx context.Context, productsCol *mongo.Collection, items []models.OrderItem) {
	for _, it := range items {
		if _, err := productsCol.UpdateOne(ctx,
			bson.M{"_id": it.ProductID},
			bson.M{"$inc": bson.M{"quantity": it.Quantity}},
		); err != nil {
			log.Printf("stock release failed for product %s (+%d): %v", it.ProductID.Hex(), it.Quantity, err)
		}
	}
}

func addressFromDTO(a dto.AddressDTO) models.Address {
	return models.Address{
		FullName:   strings.TrimSpace(a.FullName),
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(a.Country)),
		Phone:      strings.TrimSpace(a.Phone),
	}
}

// POST /api/orders, checkout
func CreateOrder(rates *utils.RateCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var body dto.CreateOrderDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		productsCol := database.OpenCollection("products")
		ordersCol := database.OpenCollection("orders")

		shipping := addressFromDTO(body.ShippingAddress)
		currency := utils.CurrencyForCountry(shipping.Country)
		rate := rates.Rate(ctx, currency)

		// Load products and build line items priced in the order currency
		items := make([]models.OrderItem, 0, len(body.Items))
		priced := make([]utils.PricedItem, 0, len(body.Items))
		for _, li := range body.Items {
			prodID, err := bson.ObjectIDFromHex(li.ProductID)
			if err != nil {
				respondError(c, http.StatusBadRequest, "invalid product id")
				return
			}

			var product models.Product
			if err := productsCol.FindOne(ctx, bson.M{"_id": prodID, "isDisabled": false}).Decode(&product); err != nil {
				respondError(c, http.StatusNotFound, fmt.Sprintf("product %s not found", li.ProductID))
				return
			}

			unit := utils.Round2(product.Price * rate)
			items = append(items, models.OrderItem{
				ProductID: product.Id,
				Name:      product.Name,
				Slug:      product.Slug,
				ImageUrl:  firstImage(product),
				Quantity:  li.Quantity,
				UnitPrice: unit,
				Total:     utils.Round2(unit * float64(li.Quantity)),
			})
			priced = append(priced, utils.PricedItem{UnitPriceUSD: product.Price, Quantity: li.Quantity})
		}

		pricing := utils.ComputePricing(priced, currency, rate)

		if err := reserveStock(c, productsCol, items); err != nil {
			var se *stockError
			if errors.As(err, &se) {
				respondError(c, http.StatusBadRequest, se.Error())
			} else {
				respondError(c, http.StatusInternalServerError, err.Error())
			}
			return
		}

		now := time.Now().UTC()
		order := models.Order{
			Id:              bson.NewObjectID(),
			OrderNumber:     models.NewOrderNumber(),
			UserID:          userID,
			Items:           items,
			ShippingAddress: shipping,
			Payment: models.Payment{
				Method:   body.PaymentMethod,
				Amount:   pricing.Total,
				Currency: currency,
				Status:   models.PaymentStatusPending,
			},
			Pricing: pricing,
			Status:  models.OrderStatusPending,
			Timeline: []models.TimelineEntry{
				models.NewTimelineEntry(models.OrderStatusPending, "order placed", "customer"),
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if body.BillingAddress != nil {
			billing := addressFromDTO(*body.BillingAddress)
			order.BillingAddress = &billing
		}

		if _, err := ordersCol.InsertOne(ctx, order); err != nil {
			// order write failed: give the stock back
			releaseStock(releaseContext(ctx), productsCol, items)
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		// checkout consumed the cart
		cartsCol := database.OpenCollection("carts")
		_, _ = cartsCol.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{
			"$set": bson.M{"items": []models.CartItem{}, "updatedAt": now},
		})

		broadcastOrderEvent("order_created", order)

		respondData(c, http.StatusCreated, order)
	}
}

// GET /api/orders lists own orders; admins see all, with an optional ?status= filter
func GetOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ordersCol := database.OpenCollection("orders")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		maxLimit, defaultLimit := utils.GetDefaultQueryLimits()
		page := utils.ParseIntDefault(c.Query("page"), 1)
		limit := utils.ParseIntDefault(c.Query("limit"), defaultLimit)
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}

		filter := bson.M{"userId": userID}
		if isAdmin(c) {
			filter = bson.M{}
			if s := strings.TrimSpace(c.Query("status")); s != "" {
				status, valid := models.ParseOrderStatus(s)
				if !valid {
					respondError(c, http.StatusBadRequest, "invalid status filter")
					return
				}
				filter["status"] = status
			}
		}

		opts := options.Find().
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := ordersCol.Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		total, err := ordersCol.CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"items": orders,
			"meta":  newPageMeta(page, limit, total),
		})
	}
}

// GET /api/orders/:id, owner or admin
func GetOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ordersCol := database.OpenCollection("orders")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid order id")
			return
		}

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var order models.Order
		if err := ordersCol.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			respondError(c, http.StatusNotFound, "order not found")
			return
		}

		if order.UserID != userID && !isAdmin(c) {
			respondError(c, http.StatusForbidden, "not your order")
			return
		}

		respondData(c, http.StatusOK, order)
	}
}

// PUT /admin/orders/:id/status. Transitions go through the allowed
// table; anything else is a 400 naming the current status.
func UpdateOrderStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ordersCol := database.OpenCollection("orders")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid order id")
			return
		}

		var body dto.UpdateOrderStatusDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		next, _ := models.ParseOrderStatus(body.Status)

		var order models.Order
		if err := ordersCol.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			respondError(c, http.StatusNotFound, "order not found")
			return
		}

		if !models.CanTransition(order.Status, next) {
			respondError(c, http.StatusBadRequest,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
			return
		}

		message := strings.TrimSpace(body.Message)
		if message == "" {
			message = fmt.Sprintf("status changed to %s", next)
		}
		entry := models.NewTimelineEntry(next, message, "admin")

		set := bson.M{
			"status":    next,
			"updatedAt": entry.CreatedAt,
		}
		switch next {
		case models.OrderStatusShipped:
			if body.Carrier != "" || body.TrackingNumber != "" {
				set["tracking"] = models.Tracking{Carrier: body.Carrier, Number: body.TrackingNumber}
			}
		case models.OrderStatusDelivered:
			set["deliveredAt"] = entry.CreatedAt
		case models.OrderStatusCancelled:
			set["payment.status"] = models.PaymentStatusRefunded
		}

		// the filter repeats the status we validated against, so a racing
		// transition makes this a no-op instead of a double apply
		res, err := ordersCol.UpdateOne(ctx, transitionFilter(id, order.Status), bson.M{
			"$set":  set,
			"$push": bson.M{"timeline": entry},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusConflict, "order status changed concurrently, retry")
			return
		}

		// admin cancellation puts the stock back like a customer cancel
		if next == models.OrderStatusCancelled {
			releaseStock(releaseContext(ctx), database.OpenCollection("products"), order.Items)
		}

		order.Status = next
		order.Timeline = append(order.Timeline, entry)
		broadcastOrderEvent("order_status_changed", order)

		respondData(c, http.StatusOK, gin.H{"status": next, "timeline": order.Timeline})
	}
}

// POST /api/orders/:id/cancel (owner), only before shipping
func CancelOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ordersCol := database.OpenCollection("orders")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid order id")
			return
		}

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var body dto.CancelOrderDTO
		_ = c.ShouldBindJSON(&body) // reason is optional

		var order models.Order
		if err := ordersCol.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			respondError(c, http.StatusNotFound, "order not found")
			return
		}

		if order.UserID != userID {
			respondError(c, http.StatusForbidden, "not your order")
			return
		}
		if !order.Status.Cancellable() {
			respondError(c, http.StatusBadRequest,
				fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
			return
		}

		message := strings.TrimSpace(body.Reason)
		if message == "" {
			message = "cancelled by customer"
		}
		entry := models.NewTimelineEntry(models.OrderStatusCancelled, message, "customer")

		res, err := ordersCol.UpdateOne(ctx, transitionFilter(id, order.Status), bson.M{
			"$set": bson.M{
				"status":         models.OrderStatusCancelled,
				"payment.status": models.PaymentStatusRefunded,
				"updatedAt":      entry.CreatedAt,
			},
			"$push": bson.M{"timeline": entry},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			// someone else moved the order first; do not restore stock twice
			respondError(c, http.StatusConflict, "order status changed concurrently, retry")
			return
		}

		// put the reserved quantities back on the shelf
		releaseStock(releaseContext(ctx), database.OpenCollection("products"), order.Items)

		order.Status = models.OrderStatusCancelled
		order.Timeline = append(order.Timeline, entry)
		broadcastOrderEvent("order_status_changed", order)

		respondData(c, http.StatusOK, gin.H{"status": order.Status, "timeline": order.Timeline})
	}
}

// POST /api/orders/:id/return (owner), only after delivery
func ReturnOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ordersCol := database.OpenCollection("orders")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid order id")
			return
		}

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var body dto.ReturnOrderDTO
		_ = c.ShouldBindJSON(&body)

		var order models.Order
		if err := ordersCol.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			respondError(c, http.StatusNotFound, "order not found")
			return
		}

		if order.UserID != userID {
			respondError(c, http.StatusForbidden, "not your order")
			return
		}
		if order.Status != models.OrderStatusDelivered {
			respondError(c, http.StatusBadRequest, "only delivered orders can be returned")
			return
		}

		// refund covers the selected lines, or the whole order
		refundAmount := 0.0
		if len(body.ProductIds) > 0 {
			wanted := make(map[string]bool, len(body.ProductIds))
			for _, pid := range body.ProductIds {
				wanted[pid] = true
			}
			for _, it := range order.Items {
				if wanted[it.ProductID.Hex()] {
					refundAmount += it.Total
				}
			}
			if refundAmount == 0 {
				respondError(c, http.StatusBadRequest, "no matching items to return")
				return
			}
		} else {
			for _, it := range order.Items {
				refundAmount += it.Total
			}
		}
		refundAmount = utils.Round2(refundAmount)

		message := strings.TrimSpace(body.Reason)
		if message == "" {
			message = "return requested by customer"
		}
		entry := models.NewTimelineEntry(models.OrderStatusReturned, message, "customer")

		refund := models.Refund{
			Amount:      refundAmount,
			Reason:      body.Reason,
			Status:      "pending",
			RequestedAt: entry.CreatedAt,
		}

		res, err := ordersCol.UpdateOne(ctx, transitionFilter(id, models.OrderStatusDelivered), bson.M{
			"$set": bson.M{
				"status":    models.OrderStatusReturned,
				"refund":    refund,
				"updatedAt": entry.CreatedAt,
			},
			"$push": bson.M{"timeline": entry},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusConflict, "order status changed concurrently, retry")
			return
		}

		order.Status = models.OrderStatusReturned
		order.Refund = &refund
		order.Timeline = append(order.Timeline, entry)
		broadcastOrderEvent("order_status_changed", order)

		respondData(c, http.StatusOK, gin.H{
			"status": order.Status,
			"refund": refund,
		})
	}
}
