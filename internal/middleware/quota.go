package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/service"
)

// Entitlement the caller's resolved plan limits, attached to the
// request context by EntitlementGuard
type Entitlement struct {
	PlanID    string
	PlanName  string
	TourLimit int
	BlogLimit int
	Active    bool
}

const entitlementKey = "entitlement"

// GetEntitlement returns the entitlement resolved for this request,
// or false when no guard ran
func GetEntitlement(c *gin.Context) (*Entitlement, bool) {
	v, exists := c.Get(entitlementKey)
	if !exists {
		return nil, false
	}
	ent, ok := v.(*Entitlement)
	return ent, ok
}

// EntitlementGuard resolves the calling host's plan limits and stores
// them as a typed Entitlement. Hosts without an active subscription
// fall back to the free tier. Must run after JWTAuth.
func EntitlementGuard(subs service.SubscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", common.ErrUnauthorized)
			c.Abort()
			return
		}

		ent := &Entitlement{
			TourLimit: domain.BasicTourLimit,
			BlogLimit: 0,
		}

		sub, err := subs.GetMySubscription(c.Request.Context(), userID)
		if err == nil && sub.Plan != nil {
			ent.PlanID = sub.PlanID
			ent.PlanName = sub.Plan.Name
			ent.TourLimit = sub.Plan.TourLimit
			ent.BlogLimit = sub.Plan.BlogLimit
			ent.Active = true
		}

		c.Set(entitlementKey, ent)
		c.Next()
	}
}
