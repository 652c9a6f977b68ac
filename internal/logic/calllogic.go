package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"indexfund-api/internal/svc"
	"indexfund-api/internal/types"
	hostpkg "indexfund-api/pkg/host"
	"indexfund-api/pkg/registry"
)

type CallLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCallLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CallLogic {
	return &CallLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Call verifies and dispatches a signed registry call.
func (l *CallLogic) Call(req *types.CallRequest) (*types.CallResponse, error) {
	signed := SignedCallFromRequest(req)
	caller, err := l.svcCtx.Runtime.ExecuteSigned(l.ctx, signed)
	if err != nil {
		return nil, err
	}
	return &types.CallResponse{Caller: string(caller), Method: signed.Action.Method}, nil
}

// SignedCallFromRequest converts the wire request into a host envelope. The
// action must round-trip exactly or the signature will not verify.
func SignedCallFromRequest(req *types.CallRequest) hostpkg.SignedCall {
	action := hostpkg.Action{
		Method:     req.Action.Method,
		Controller: registry.Identity(req.Action.Controller),
	}
	if len(req.Action.Updates) > 0 {
		action.Updates = make([]registry.AssetWeight, 0, len(req.Action.Updates))
		for _, u := range req.Action.Updates {
			action.Updates = append(action.Updates, registry.AssetWeight{AssetID: registry.AssetID(u.AssetId), Weight: u.Weight})
		}
	}
	return hostpkg.SignedCall{
		Action:  action,
		Deposit: req.Deposit,
		Nonce:   req.Nonce,
		Signature: hostpkg.Signature{
			R: req.Signature.R,
			S: req.Signature.S,
			V: req.Signature.V,
		},
	}
}
