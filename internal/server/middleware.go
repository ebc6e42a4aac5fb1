package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/setavenger/ztransparent/internal/logging"
	"github.com/setavenger/ztransparent/internal/zcash"
)

const addressKey = "address"

// FetchAddressMiddleware decodes the :address parameter and rejects addresses
// of another network.
func FetchAddressMiddleware(network zcash.Network) gin.HandlerFunc {
	return func(c *gin.Context) {
		addrStr := c.Param("address")
		if addrStr == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "address is required"})
			return
		}

		addr, err := zcash.DecodeAddress(addrStr)
		if err != nil {
			logging.L.Debug().Err(err).Str("address", addrStr).Msg("could not decode address")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "could not decode address"})
			return
		}
		if addr.Network() != network {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "address is for network " + addr.Network().String()})
			return
		}

		c.Set(addressKey, addr)
		c.Next()
	}
}

// heightRange parses the optional start and end query parameters.
func heightRange(c *gin.Context) (zcash.HeightRange, bool) {
	r := zcash.FullHeightRange()
	for _, p := range []struct {
		name string
		dst  *zcash.Height
	}{
		{"start", &r.Start},
		{"end", &r.End},
	} {
		s := c.Query(p.name)
		if s == "" {
			continue
		}
		h, err := strconv.ParseUint(s, 10, 32)
		if err != nil || h > uint64(zcash.MaxHeight) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse " + p.name + " height"})
			return r, false
		}
		*p.dst = zcash.Height(h)
	}
	return r, true
}
