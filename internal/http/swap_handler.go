package http

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/domain"
	"github.com/okx/WEB3-DEX/internal/engine"
	"github.com/okx/WEB3-DEX/internal/http/httputil"
)

// SwapHandler exposes the execution engine's entry points. Addresses are hex
// strings, amounts are decimal strings, packed words and opaque byte blobs
// are 0x-prefixed hex.
type SwapHandler struct {
	eng *engine.Engine
}

func NewSwapHandler(eng *engine.Engine) *SwapHandler {
	return &SwapHandler{eng: eng}
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

func (h *SwapHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.smartSwap)
	pub.POST("/invest", h.investSwap)
	pub.POST("/unx", h.unxSwap)
	pub.POST("/clmm", h.clmmSwap)
}

type ForkPayload struct {
	// Adapter is the registry handle of the liquidity source.
	Adapter string `json:"adapter" binding:"required"`

	// AssetTo is where the fork's input is placed before the sell call.
	AssetTo string `json:"assetTo" binding:"required"`

	// Reverse selects the quote-to-base direction.
	Reverse bool `json:"reverse"`

	// Weight is the fork's share of the hop input in basis points.
	Weight uint16 `json:"weight"`

	Pool string `json:"pool" binding:"required"`

	// MoreInfo is opaque adapter data, 0x-prefixed hex.
	MoreInfo string `json:"moreInfo"`
}

type HopPayload struct {
	FromToken string        `json:"fromToken" binding:"required"`
	ToToken   string        `json:"toToken" binding:"required"`
	Forks     []ForkPayload `json:"forks" binding:"required"`
}

type BatchPayload struct {
	// Amount is the slice of the total input routed through this batch,
	// as a decimal string.
	Amount string       `json:"amount" binding:"required"`
	Hops   []HopPayload `json:"hops" binding:"required"`
}

type SmartSwapRequest struct {
	// OrderID is a caller-chosen correlation id, decimal string.
	OrderID string `json:"orderId"`

	// Origin is the account the swap is executed for.
	Origin string `json:"origin" binding:"required"`

	// Receiver takes the output when set; defaults to origin.
	Receiver string `json:"receiver"`

	// Refund takes unspent input (invest variant only); defaults to origin.
	Refund string `json:"refund"`

	FromToken string `json:"fromToken" binding:"required"`
	ToToken   string `json:"toToken" binding:"required"`

	// Amount and MinReturn are decimal strings in smallest token units.
	Amount    string `json:"amount" binding:"required"`
	MinReturn string `json:"minReturn" binding:"required"`

	// Deadline is a unix timestamp; zero disables the check.
	Deadline int64 `json:"deadline"`

	Batches []BatchPayload `json:"batches" binding:"required"`

	// Commission is the encoded commission trailer, 0x-prefixed hex.
	Commission string `json:"commission"`
}

type PackedSwapRequest struct {
	Origin string `json:"origin" binding:"required"`

	// SrcToken is a packed word for the constant-product shorthand and a
	// plain token address for the concentrated one.
	SrcToken string `json:"srcToken" binding:"required"`

	// Receiver is the packed receiver word (concentrated shorthand only).
	Receiver string `json:"receiver"`

	Amount    string `json:"amount" binding:"required"`
	MinReturn string `json:"minReturn" binding:"required"`

	// Pools are packed pool words, 0x-prefixed hex.
	Pools []string `json:"pools" binding:"required"`
}

type SwapResponse struct {
	OrderID          string `json:"orderId"`
	FromToken        string `json:"fromToken"`
	ToToken          string `json:"toToken"`
	FromTokenAmount  string `json:"fromTokenAmount"`
	ReturnAmount     string `json:"returnAmount"`
	RefundAmount     string `json:"refundAmount"`
	CommissionAmount string `json:"commissionAmount"`
}

func (h *SwapHandler) smartSwap(c *gin.Context) {
	var req SmartSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	args, err := decodeSmartSwap(&req)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	var result *domain.SwapResult
	if args.receiver == args.origin {
		result, err = h.eng.SmartSwapByOrderID(c.Request.Context(), args.orderID, args.origin, args.swapReq, args.batches, args.trailer)
	} else {
		result, err = h.eng.SmartSwapTo(c.Request.Context(), args.orderID, args.origin, args.receiver, args.swapReq, args.batches, args.trailer)
	}
	if err != nil {
		handleEngineError(c, err)
		return
	}
	httputil.Success(c, swapResponse(result))
}

func (h *SwapHandler) investSwap(c *gin.Context) {
	var req SmartSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	args, err := decodeSmartSwap(&req)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	result, err := h.eng.SmartSwapByInvest(c.Request.Context(), args.orderID, args.origin, args.receiver, args.refund, args.swapReq, args.batches, args.trailer)
	if err != nil {
		handleEngineError(c, err)
		return
	}
	httputil.Success(c, swapResponse(result))
}

func (h *SwapHandler) unxSwap(c *gin.Context) {
	var req PackedSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	srcToken, err := parseWord(req.SrcToken)
	if err != nil {
		httputil.BadRequest(c, "invalid srcToken word: "+err.Error())
		return
	}
	origin, amount, minReturn, pools, err := decodePackedCommon(&req)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	result, err := h.eng.UnxSwap(c.Request.Context(), origin, srcToken, amount, minReturn, pools)
	if err != nil {
		handleEngineError(c, err)
		return
	}
	httputil.Success(c, swapResponse(result))
}

func (h *SwapHandler) clmmSwap(c *gin.Context) {
	var req PackedSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if req.Receiver == "" {
		httputil.BadRequest(c, "receiver word is required")
		return
	}
	receiver, err := parseWord(req.Receiver)
	if err != nil {
		httputil.BadRequest(c, "invalid receiver word: "+err.Error())
		return
	}
	srcToken, err := parseAddress(req.SrcToken)
	if err != nil {
		httputil.BadRequest(c, "invalid srcToken address: "+err.Error())
		return
	}
	origin, amount, minReturn, pools, err := decodePackedCommon(&req)
	if err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	result, err := h.eng.ClmmSwapTo(c.Request.Context(), origin, receiver, amount, minReturn, pools, srcToken)
	if err != nil {
		handleEngineError(c, err)
		return
	}
	httputil.Success(c, swapResponse(result))
}

type smartSwapArgs struct {
	orderID  *uint256.Int
	origin   common.Address
	receiver common.Address
	refund   common.Address
	swapReq  *domain.SwapRequest
	batches  []domain.Batch
	trailer  []byte
}

func decodeSmartSwap(req *SmartSwapRequest) (*smartSwapArgs, error) {
	origin, err := parseAddress(req.Origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin address: %w", err)
	}

	receiver := origin
	if req.Receiver != "" {
		if receiver, err = parseAddress(req.Receiver); err != nil {
			return nil, fmt.Errorf("invalid receiver address: %w", err)
		}
	}
	refund := origin
	if req.Refund != "" {
		if refund, err = parseAddress(req.Refund); err != nil {
			return nil, fmt.Errorf("invalid refund address: %w", err)
		}
	}

	fromToken, err := parseAddress(req.FromToken)
	if err != nil {
		return nil, fmt.Errorf("invalid fromToken address: %w", err)
	}
	toToken, err := parseAddress(req.ToToken)
	if err != nil {
		return nil, fmt.Errorf("invalid toToken address: %w", err)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	minReturn, err := parseAmount(req.MinReturn)
	if err != nil {
		return nil, fmt.Errorf("invalid minReturn: %w", err)
	}

	orderID := uint256.NewInt(0)
	if req.OrderID != "" {
		if orderID, err = parseAmount(req.OrderID); err != nil {
			return nil, fmt.Errorf("invalid orderId: %w", err)
		}
	}

	trailer, err := parseBytes(req.Commission)
	if err != nil {
		return nil, fmt.Errorf("invalid commission trailer: %w", err)
	}

	batches, err := decodeBatches(req.Batches)
	if err != nil {
		return nil, err
	}

	return &smartSwapArgs{
		orderID:  orderID,
		origin:   origin,
		receiver: receiver,
		refund:   refund,
		swapReq: &domain.SwapRequest{
			FromToken:       fromToken,
			ToToken:         toToken,
			FromTokenAmount: amount,
			MinReturnAmount: minReturn,
			Deadline:        req.Deadline,
		},
		batches: batches,
		trailer: trailer,
	}, nil
}

func decodeBatches(payloads []BatchPayload) ([]domain.Batch, error) {
	batches := make([]domain.Batch, 0, len(payloads))
	for i, bp := range payloads {
		amount, err := parseAmount(bp.Amount)
		if err != nil {
			return nil, fmt.Errorf("batch %d: invalid amount: %w", i, err)
		}

		hops := make([]domain.Hop, 0, len(bp.Hops))
		for j, hp := range bp.Hops {
			fromToken, err := parseAddress(hp.FromToken)
			if err != nil {
				return nil, fmt.Errorf("batch %d hop %d: invalid fromToken: %w", i, j, err)
			}
			toToken, err := parseAddress(hp.ToToken)
			if err != nil {
				return nil, fmt.Errorf("batch %d hop %d: invalid toToken: %w", i, j, err)
			}

			forks := make([]domain.Fork, 0, len(hp.Forks))
			for k, fp := range hp.Forks {
				adapter, err := parseAddress(fp.Adapter)
				if err != nil {
					return nil, fmt.Errorf("batch %d hop %d fork %d: invalid adapter: %w", i, j, k, err)
				}
				assetTo, err := parseAddress(fp.AssetTo)
				if err != nil {
					return nil, fmt.Errorf("batch %d hop %d fork %d: invalid assetTo: %w", i, j, k, err)
				}
				pool, err := parseAddress(fp.Pool)
				if err != nil {
					return nil, fmt.Errorf("batch %d hop %d fork %d: invalid pool: %w", i, j, k, err)
				}
				moreInfo, err := parseBytes(fp.MoreInfo)
				if err != nil {
					return nil, fmt.Errorf("batch %d hop %d fork %d: invalid moreInfo: %w", i, j, k, err)
				}

				forks = append(forks, domain.Fork{
					Adapter:  adapter,
					AssetTo:  assetTo,
					Reverse:  fp.Reverse,
					Weight:   fp.Weight,
					Pool:     pool,
					MoreInfo: moreInfo,
				})
			}
			hops = append(hops, domain.Hop{FromToken: fromToken, ToToken: toToken, Forks: forks})
		}
		batches = append(batches, domain.Batch{Amount: amount, Hops: hops})
	}
	return batches, nil
}

func decodePackedCommon(req *PackedSwapRequest) (common.Address, *uint256.Int, *uint256.Int, []*uint256.Int, error) {
	origin, err := parseAddress(req.Origin)
	if err != nil {
		return common.Address{}, nil, nil, nil, fmt.Errorf("invalid origin address: %w", err)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return common.Address{}, nil, nil, nil, fmt.Errorf("invalid amount: %w", err)
	}
	minReturn, err := parseAmount(req.MinReturn)
	if err != nil {
		return common.Address{}, nil, nil, nil, fmt.Errorf("invalid minReturn: %w", err)
	}

	pools := make([]*uint256.Int, 0, len(req.Pools))
	for i, p := range req.Pools {
		word, err := parseWord(p)
		if err != nil {
			return common.Address{}, nil, nil, nil, fmt.Errorf("invalid pool word %d: %w", i, err)
		}
		pools = append(pools, word)
	}
	return origin, amount, minReturn, pools, nil
}

func swapResponse(result *domain.SwapResult) *SwapResponse {
	return &SwapResponse{
		OrderID:          result.OrderID.Dec(),
		FromToken:        result.FromToken.Hex(),
		ToToken:          result.ToToken.Hex(),
		FromTokenAmount:  result.FromTokenAmount.Dec(),
		ReturnAmount:     result.ReturnAmount.Dec(),
		RefundAmount:     result.RefundAmount.Dec(),
		CommissionAmount: result.CommissionAmount.Dec(),
	}
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("not a hex address: %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("not a decimal amount: %q", s)
	}
	return v, nil
}

// parseWord decodes a 0x-prefixed hex word of up to 32 bytes.
func parseWord(s string) (*uint256.Int, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) > 32 {
		return nil, fmt.Errorf("word longer than 32 bytes: %d", len(b))
	}
	return new(uint256.Int).SetBytes(b), nil
}

func parseBytes(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hexutil.Decode(s)
}

