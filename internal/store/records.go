package store

import "time"

// VisitRecord is one pixel page view.
type VisitRecord struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	AgencyID     string    `gorm:"type:varchar(64);index:idx_visit_adv_ts,priority:1"`
	AdvertiserID string    `gorm:"type:varchar(64);not null;index:idx_visit_adv_ts,priority:2"`
	ClientID     string    `gorm:"type:varchar(64);not null"`
	Referrer     string    `gorm:"type:text"`
	ImpressionID string    `gorm:"type:varchar(128);index"`
	Ts           time.Time `gorm:"not null;index:idx_visit_adv_ts,priority:3"`
}

func (VisitRecord) TableName() string {
	return "web_visitors_to_log"
}

// ConversionRecord is one site-visit-to-conversion row keyed by device.
type ConversionRecord struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	AgencyID     string    `gorm:"type:varchar(64);index:idx_conv_adv_ts,priority:1"`
	AdvertiserID string    `gorm:"type:varchar(64);not null;index:idx_conv_adv_ts,priority:2"`
	DeviceID     string    `gorm:"type:varchar(128);not null"`
	ImpressionID string    `gorm:"type:varchar(128)"`
	IsLead       bool      `gorm:"not null;default:false"`
	IsPurchase   bool      `gorm:"not null;default:false"`
	Ts           time.Time `gorm:"not null;index:idx_conv_adv_ts,priority:3"`
}

func (ConversionRecord) TableName() string {
	return "ad_to_web_visit_attribution"
}

// ImpressionRecord is one row of the row-level exposure log.
type ImpressionRecord struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	AgencyID     string    `gorm:"type:varchar(64);index:idx_imp_adv_ts,priority:1"`
	AdvertiserID string    `gorm:"type:varchar(64);not null;index:idx_imp_adv_ts,priority:2"`
	CampaignID   string    `gorm:"type:varchar(64);index"`
	CampaignName string    `gorm:"type:varchar(255)"`
	ImpressionID string    `gorm:"type:varchar(128)"`
	DeviceID     string    `gorm:"type:varchar(128);not null"`
	Ts           time.Time `gorm:"not null;index:idx_imp_adv_ts,priority:3"`
}

func (ImpressionRecord) TableName() string {
	return "ad_impression_log"
}

// WeeklyCampaignStat is one pre-aggregated weekly rollup delivered by an upstream feed.
type WeeklyCampaignStat struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	AgencyID     string    `gorm:"type:varchar(64)"`
	AdvertiserID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_weekly_key,priority:1"`
	CampaignID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_weekly_key,priority:2"`
	CampaignName string    `gorm:"type:varchar(255)"`
	WeekStart    time.Time `gorm:"not null;uniqueIndex:idx_weekly_key,priority:3"`
	Impressions  int64     `gorm:"not null;default:0"`
	Visits       int64     `gorm:"not null;default:0"`
}

func (WeeklyCampaignStat) TableName() string {
	return "weekly_campaign_stats"
}

// AdvertiserConfigRecord is one routing entry.
type AdvertiserConfigRecord struct {
	AdvertiserID           string `gorm:"primaryKey;type:varchar(64)"`
	ImpressionJoinStrategy string `gorm:"type:varchar(32);not null"`
	ExposureSource         string `gorm:"type:varchar(32)"`
	Status                 string `gorm:"type:varchar(16);not null;default:ACTIVE"`
	UpdatedAt              time.Time
}

func (AdvertiserConfigRecord) TableName() string {
	return "ref_advertiser_config"
}
