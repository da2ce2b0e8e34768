package accessgrp

import (
	"github.com/MichaelGiresi/cuneos/business/core/filter"
	"github.com/MichaelGiresi/cuneos/business/core/profile"
)

type grant struct {
	UserID string `json:"user_id" validate:"required"`
}

type change struct {
	Owner  string `json:"owner"`
	UserID string `json:"user_id"`
	Miner  string `json:"miner"`
}

type readable struct {
	UserID string       `json:"user_id"`
	Data   profile.Data `json:"data"`
	Score  uint32       `json:"score"`
}

type relevant struct {
	Profiles     []readable `json:"profiles"`
	Inaccessible []string   `json:"inaccessible"`
}

func toRelevant(res filter.Result) relevant {
	resp := relevant{
		Profiles:     make([]readable, len(res.Ranked)),
		Inaccessible: res.Inaccessible,
	}
	if resp.Inaccessible == nil {
		resp.Inaccessible = []string{}
	}

	for i, r := range res.Ranked {
		resp.Profiles[i] = readable{
			UserID: r.Profile.UserID,
			Data:   r.Data,
			Score:  r.Score,
		}
	}

	return resp
}
