package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// exportOrders streams a place's orders as CSV for the admin export flow.
func (h *Handler) exportOrders(c *gin.Context) {
	placeID, ok := pathID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), placeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="orders-place-%d.csv"`, placeID))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"id", "created_at", "status", "effective_status", "payment_type",
		"total", "fees", "due", "description", "processor_tx_id", "tx_hash", "payout_id",
	})

	now := time.Now()
	for i := range orders {
		o := &orders[i]
		_ = w.Write([]string{
			strconv.FormatInt(o.ID, 10),
			o.CreatedAt.Format(time.RFC3339),
			string(o.Status),
			string(h.orderService.ProjectStatus(o, now)),
			string(o.PaymentType),
			strconv.FormatInt(o.Total, 10),
			strconv.FormatInt(o.Fees, 10),
			strconv.FormatInt(o.Due, 10),
			o.Description,
			deref(o.ProcessorTxID),
			deref(o.TxHash),
			derefID(o.PayoutID),
		})
	}
	w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
