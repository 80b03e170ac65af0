package negotiation

import (
	"Motorway/internal/model"
)

// CanRespond 当前查看者能否对报价做出接受/拒绝/还价
func CanRespond(offer *model.Offer, viewerID uint64, concluded bool) bool {
	if offer == nil || viewerID == 0 {
		return false
	}
	return offer.RecipientID == viewerID && Status(offer.Status) == Pending && !concluded
}

// IsMine 仅用于展示左右气泡，不参与权限判断
func IsMine(senderID, viewerID uint64) bool {
	return viewerID != 0 && senderID == viewerID
}

// Concluded 议价是否已结束：车辆已预订或售出，或会话内已有被接受的报价
func Concluded(vehicleStatus string, offers []*model.Offer) bool {
	if vehicleStatus == model.VehicleStatusReserved || vehicleStatus == model.VehicleStatusSold {
		return true
	}
	for _, o := range offers {
		if Status(o.Status) == Accepted {
			return true
		}
	}
	return false
}

// LatestPending 返回会话中仍待答复的报价，没有则返回 nil
func LatestPending(offers []*model.Offer) *model.Offer {
	var latest *model.Offer
	for _, o := range offers {
		if Status(o.Status) != Pending {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) ||
			(o.CreatedAt.Equal(latest.CreatedAt) && o.ID > latest.ID) {
			latest = o
		}
	}
	return latest
}
