package mysql

// The rooms row is the per-room exclusion scope: Reserve locks it with
// SELECT ... FOR UPDATE so check+insert for one room is a single
// serialized section while other rooms' rows stay untouched.

const ensureRoomSQL = `
INSERT IGNORE INTO rooms (id) VALUES (?)
`

const lockRoomSQL = `
SELECT id FROM rooms WHERE id = ? FOR UPDATE
`

const selectConfirmedByRoomSQL = `
SELECT id, room_id, guest_id, start_date, end_date, status
FROM bookings
WHERE room_id = ? AND status = 'CONFIRMED'
`

const insertBookingSQL = `
INSERT INTO bookings (room_id, guest_id, start_date, end_date, status)
VALUES (?, ?, ?, ?, 'CONFIRMED')
`

const selectBookingForUpdateSQL = `
SELECT id, room_id, guest_id, start_date, end_date, status
FROM bookings
WHERE id = ? FOR UPDATE
`

const cancelBookingSQL = `
UPDATE bookings SET status = 'CANCELLED' WHERE id = ?
`

const listBookingsSQL = `
SELECT id, room_id, guest_id, start_date, end_date, status
FROM bookings
ORDER BY id
`

const listBookingsByRoomSQL = `
SELECT id, room_id, guest_id, start_date, end_date, status
FROM bookings
WHERE room_id = ?
ORDER BY id
`
