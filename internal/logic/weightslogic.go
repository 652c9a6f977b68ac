package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"indexfund-api/internal/svc"
	"indexfund-api/internal/types"
)

type WeightsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewWeightsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *WeightsLogic {
	return &WeightsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *WeightsLogic) Weights() (*types.WeightsResponse, error) {
	weights, err := l.svcCtx.Runtime.Weights(l.ctx)
	if err != nil {
		return nil, err
	}
	resp := &types.WeightsResponse{Weights: make([]types.AssetWeight, 0, len(weights))}
	for _, w := range weights {
		resp.Weights = append(resp.Weights, types.AssetWeight{AssetId: string(w.AssetID), Weight: w.Weight})
	}
	return resp, nil
}
