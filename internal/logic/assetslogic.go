package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"indexfund-api/internal/svc"
	"indexfund-api/internal/types"
)

type AssetsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAssetsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AssetsLogic {
	return &AssetsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *AssetsLogic) Assets() (*types.AssetsResponse, error) {
	assets, err := l.svcCtx.Runtime.Assets(l.ctx)
	if err != nil {
		return nil, err
	}
	resp := &types.AssetsResponse{Assets: make([]string, 0, len(assets))}
	for _, a := range assets {
		resp.Assets = append(resp.Assets, string(a))
	}
	return resp, nil
}
